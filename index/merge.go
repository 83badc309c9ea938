// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

// Merging indexes.
//
// To merge two indexes A and B (newer) into a combined index C:
//
// Load B's root list and determine, for each root, the file-ID range
// it shadows in A (any name of A's that falls under that root).
//
// Walk A's and B's name lists together, in order, skipping A's
// shadowed ranges, and write the union to C's name list. While doing
// so, record the mapping from A's old file IDs to C's new ones, and
// from B's old file IDs to C's new ones, as a short list of
// half-open-interval remappings (an idRange per contiguous run).
//
// Merge the posting lists trigram by trigram (they are already stored
// in trigram order), translating file IDs through the two maps as
// entries are copied across, and write the new posting-list index as
// usual.
//
// Finally union the two root lists and write the trailer.

import (
	"fmt"
	"os"
)

// An idRange records that the half-open interval [lo, hi) of file IDs
// in the source index maps to [new, new+hi-lo) in the merged index.
type idRange struct {
	lo, hi, new int
}

// Merge creates a new index in the file dst by combining src1 and
// src2. Where both claim the same file, src2 (assumed newer) wins:
// any name of src1's that falls under one of src2's roots is dropped
// in favor of src2's copy.
func Merge(dst, src1, src2 string) error {
	ix1, err := Open(src1)
	if err != nil {
		return err
	}
	defer ix1.Close()
	ix2, err := Open(src2)
	if err != nil {
		return err
	}
	defer ix2.Close()

	roots2 := ix2.Roots().All()

	var i1, i2, newID int
	var map1, map2 []idRange
	for _, root := range roots2 {
		old := i1
		for i1 < ix1.numName && ix1.Name(i1).Compare(root) < 0 {
			i1++
		}
		lo := i1
		for i1 < ix1.numName && ix1.Name(i1).HasPathPrefix(root) {
			i1++
		}

		if old < lo {
			map1 = append(map1, idRange{old, lo, newID})
			newID += lo - old
		}

		if i2 < ix2.numName && ix2.Name(i2).Compare(root) < 0 {
			return fmt.Errorf("merge: inconsistent index (root %q out of order)", root)
		}
		lo2 := i2
		for i2 < ix2.numName && ix2.Name(i2).HasPathPrefix(root) {
			i2++
		}
		hi2 := i2
		if lo2 < hi2 {
			map2 = append(map2, idRange{lo2, hi2, newID})
			newID += hi2 - lo2
		}
	}
	if i1 < ix1.numName {
		map1 = append(map1, idRange{i1, ix1.numName, newID})
		newID += ix1.numName - i1
	}
	if i2 < ix2.numName {
		return fmt.Errorf("merge: inconsistent index (trailing names in %s)", src2)
	}
	numName := newID

	main, err := bufCreate(dst)
	if err != nil {
		return err
	}
	main.WriteString(magic)

	// Union of roots.
	allRoots := mergeRoots(ix1.Roots().All(), roots2)
	rootsOff := main.Offset()
	rootsWriter := NewPathWriter(main, nil, 0)
	for _, r := range allRoots {
		rootsWriter.Write(r)
	}
	numRoot := rootsWriter.Count()
	main.Align(16)

	nameData := main.Offset()
	nameIndex, err := bufCreate("")
	if err != nil {
		return err
	}
	names := NewPathWriter(main, nameIndex, nameGroupSize)
	newID = 0
	mi1, mi2 := 0, 0
	for newID < numName {
		switch {
		case mi1 < len(map1) && map1[mi1].new == newID:
			for i := map1[mi1].lo; i < map1[mi1].hi; i++ {
				names.Write(ix1.Name(i))
				newID++
			}
			mi1++
		case mi2 < len(map2) && map2[mi2].new == newID:
			for i := map2[mi2].lo; i < map2[mi2].hi; i++ {
				names.Write(ix2.Name(i))
				newID++
			}
			mi2++
		default:
			return fmt.Errorf("merge: inconsistent index (gap at file ID %d)", newID)
		}
	}
	main.Align(16)

	// Merge posting lists, remapping file IDs through map1/map2 as we go.
	postData := main.Offset()
	postIndex, err := bufCreate("")
	if err != nil {
		return err
	}
	var h postHeap
	h.addMem(remapPostings(ix1, map1))
	h.addMem(remapPostings(ix2, map2))

	var w postDataWriter
	w.init(main, postIndex)
	e := h.next()
	for {
		t := e.trigram()
		w.trigram(t)
		for ; e.trigram() == t && t != invalidTrigram; e = h.next() {
			w.fileid(e.fileid())
		}
		w.endTrigram()
		if t == invalidTrigram {
			break
		}
	}
	w.flush()
	numTrigram := w.numTrigram
	main.Align(16)

	var off [8]int
	off[0] = rootsOff
	off[1] = numRoot
	off[2] = nameData
	off[3] = numName
	off[4] = postData
	off[5] = numTrigram

	off[6] = main.Offset()
	if err := copyFile(main, nameIndex); err != nil {
		return err
	}
	main.Align(16)

	off[7] = main.Offset()
	if err := copyFile(main, postIndex); err != nil {
		return err
	}

	for _, v := range off {
		main.WriteUint(v)
	}
	main.WriteString(trailerMagic)

	if err := main.Err(); err != nil {
		return err
	}
	main.Flush()
	if err := main.Err(); err != nil {
		return err
	}

	os.Remove(nameIndex.name)
	os.Remove(postIndex.name)
	return nil
}

// mergeRoots returns the sorted, de-duplicated union of two already
// sorted root lists, with any root of r1 that is also present in r2
// dropped in favor of r2's copy.
func mergeRoots(r1, r2 []Path) []Path {
	seen := make(map[string]bool, len(r2))
	for _, r := range r2 {
		seen[r.String()] = true
	}
	out := append([]Path{}, r2...)
	for _, r := range r1 {
		if !seen[r.String()] {
			out = append(out, r)
			seen[r.String()] = true
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Compare(out[j-1]) < 0; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// remapPostings decodes every posting list in ix, in order, dropping
// entries whose old file ID is not covered by idMap (it was shadowed
// by the other index) and translating the rest to their new file ID.
// File IDs restart from a small value at the beginning of each
// trigram's posting list, so the idMap scan cursor resets there too.
func remapPostings(ix *Index, idMap []idRange) []postEntry {
	var r allPostReader
	r.init(ix.slice(ix.postData, ix.postIndex-ix.postData))

	var out []postEntry
	i := 0
	curTrigram := invalidTrigram
	for {
		e, ok := r.next()
		if !ok {
			break
		}
		if e.trigram() != curTrigram {
			curTrigram = e.trigram()
			i = 0
		}
		old := e.fileid()
		for i < len(idMap) && idMap[i].hi <= old {
			i++
		}
		if i >= len(idMap) || old < idMap[i].lo {
			continue
		}
		out = append(out, makePostEntry(e.trigram(), idMap[i].new+old-idMap[i].lo))
	}
	return out
}
