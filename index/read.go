// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

// Index Format
//
// An index stored on disk has the format:
//
//	"csearch index 2\n"
//	list of roots
//	list of names
//	list of posting lists
//	name index
//	posting list index
//	trailer
//
// The list of roots and list of names are sorted (by Path.Compare)
// sequences of prefix-compressed paths. Each path is encoded as a
// varint number of prefix bytes to copy from the previous path, a
// varint number of suffix bytes that follow, and the suffix bytes.
// For example, the two-path sequence {"abcdef", "abcx"} is encoded
// as [0 6 abcdef 3 1 x].
//
// In the name list, every 16th name has a forced prefix length of 0,
// so that random access is possible by starting at one of these
// entries. The name index lists the offset of every 16th name.
//
// The list of posting lists is a sequence of posting lists. Each
// posting list has the form:
//
//	trigram [3]
//	deltas [v]...
//
// The trigram gives the 3-byte trigram that this list describes. The
// delta list is a sequence of γ-coded deltas between file IDs, ending
// with a zero delta. For example, the delta list [2,5,1,1,0] encodes
// the file ID list 1, 6, 7, 8. In the γ-encoding, which cannot
// represent 0, 0 encodes as deltaZeroEnc, and all values v >=
// deltaZeroEnc encode as v+1.
//
// The name index is a sequence of 8-byte big-endian values listing
// the byte offset in the name list where every 16th name begins.
//
// The posting list index is a sequence of index entries describing
// each successive posting list. Each index entry has the form:
//
//	trigram [3]
//	file count [v]
//	offset [v]
//
// The file count and offset are varint-encoded, which would normally
// break random access; to restore it, any index entry that would
// otherwise cross a postBlockSize-byte boundary is preceded by zeroed
// padding bytes up to the boundary, and the offsets within each block
// are delta-encoded starting from a base offset of zero. The overall
// index is zero-padded to a multiple of postBlockSize bytes.
//
// Index entries exist only for non-empty posting lists, so finding
// the list for a given trigram requires a binary search over the
// blocks, then a linear scan within the located block.
//
// The trailer has the form:
//
//	offset of root list [8]
//	number of roots [8]
//	offset of name list [8]
//	number of names [8]
//	offset of posting lists [8]
//	number of posting lists [8]
//	offset of name index [8]
//	offset of posting list index [8]
//	"\ncsearch trlr 2\n"

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

const (
	magic        = "csearch index 2\n"
	trailerMagic = "\ncsearch trlr 2\n"
)

// An Index implements read-only access to a trigram index file,
// backed by a read-only mmap of the whole file.
type Index struct {
	Verbose bool

	name string
	data *mmapData

	pathData int
	numPath  int

	nameData int
	numName  int

	postData int
	numPost  int

	nameIndex int

	postIndex    int
	numPostBlock int

	err error // sticky first corruption error, if any
}

// Open opens the index stored in file, memory-mapping it for
// read-only access. It returns an error if file cannot be opened or
// does not hold a recognizable v2 index; per the error-handling
// policy, this error is never swallowed and must be returned to the
// caller.
func Open(file string) (*Index, error) {
	mm, err := mmap(file)
	if err != nil {
		return nil, err
	}
	ix := &Index{name: file, data: mm}
	if len(mm.d) < len(trailerMagic) {
		return nil, ix.formatError("truncated index file")
	}

	got := string(mm.d[len(mm.d)-len(trailerMagic):])
	if got != trailerMagic {
		return nil, ix.formatError("unrecognized trailer %q (expected v2 index)", got)
	}

	n := len(mm.d) - len(trailerMagic) - 8*8
	if n < 0 {
		return nil, ix.formatError("truncated trailer")
	}
	ix.pathData = ix.uint64(n)
	ix.numPath = ix.uint64(n + 1*8)
	ix.nameData = ix.uint64(n + 2*8)
	ix.numName = ix.uint64(n + 3*8)
	ix.postData = ix.uint64(n + 4*8)
	ix.numPost = ix.uint64(n + 5*8)
	ix.nameIndex = ix.uint64(n + 6*8)
	ix.postIndex = ix.uint64(n + 7*8)
	ix.numPostBlock = (n - ix.postIndex) / postBlockSize
	if ix.err != nil {
		return nil, ix.err
	}
	return ix, nil
}

// Close unmaps the index's backing file. The Index must not be used
// afterward.
func (ix *Index) Close() error {
	return munmap(ix.data)
}

// Err returns the first corruption error encountered while reading
// posting lists or names, or nil if none has occurred. Open already
// validates the trailer and returns its own error directly; Err
// surfaces corruption discovered lazily while answering a query.
func (ix *Index) Err() error {
	return ix.err
}

func (ix *Index) formatError(format string, args ...interface{}) error {
	err := fmt.Errorf("corrupt index %s: "+format, append([]interface{}{ix.name}, args...)...)
	if ix.err == nil {
		ix.err = err
	}
	return err
}

// corrupt records (once) that the index has been found to be
// internally inconsistent. Callers that discover corruption while
// decoding a posting list cannot easily return an error through the
// existing []int-returning API, so they record it here; Err surfaces
// it to the caller afterward.
func (ix *Index) corrupt() {
	ix.formatError("invalid posting or name data")
}

// slice returns the slice of index data starting at the given byte
// offset. If n >= 0, the slice is truncated to length n.
func (ix *Index) slice(off, n int) []byte {
	if off < 0 || off > len(ix.data.d) {
		ix.corrupt()
		return nil
	}
	if n < 0 {
		return ix.data.d[off:]
	}
	if off+n < off || off+n > len(ix.data.d) {
		ix.corrupt()
		return nil
	}
	return ix.data.d[off : off+n]
}

func (ix *Index) uint64(off int) int {
	b := ix.slice(off, 8)
	if len(b) < 8 {
		return 0
	}
	v := binary.BigEndian.Uint64(b)
	if int(v) < 0 || uint64(int(v)) != v {
		ix.corrupt()
		return 0
	}
	return int(v)
}

// Roots returns the list of indexed root paths.
func (ix *Index) Roots() *PathReader {
	return NewPathReader(ix.slice(ix.pathData, ix.nameData-ix.pathData), ix.numPath)
}

// Name returns the name corresponding to the given file ID.
func (ix *Index) Name(fileid int) Path {
	return ix.NamesAt(fileid, fileid+1).Path()
}

// NamesAt returns a PathReader yielding the names for file IDs in the
// half-open range [min, max).
func (ix *Index) NamesAt(min, max int) *PathReader {
	if min >= ix.numName {
		return NewPathReader(nil, 0)
	}
	limit := max - min
	off := ix.uint64(ix.nameIndex + min/nameGroupSize*8)
	limit += min % nameGroupSize
	names := NewPathReader(ix.slice(ix.nameData+off, ix.postData-(ix.nameData+off)), limit)
	for i := 0; i < min%nameGroupSize; i++ {
		names.Next()
	}
	return names
}

// Names returns every indexed name from lo (inclusive) to hi
// (exclusive).
func (ix *Index) Names(lo, hi int) []Path {
	if hi <= lo {
		return nil
	}
	return ix.NamesAt(lo, hi).All()
}

func (ix *Index) findList(trigram uint32) (count, offset int) {
	b := ix.slice(ix.postIndex, ix.numPostBlock*postBlockSize)
	i := sort.Search(ix.numPostBlock, func(i int) bool {
		i *= postBlockSize
		t := uint32(b[i])<<16 | uint32(b[i+1])<<8 | uint32(b[i+2])
		return t > trigram
	})
	if i == 0 {
		return 0, 0
	}

	block := b[(i-1)*postBlockSize : i*postBlockSize]
	for len(block) >= 3 {
		t := uint32(block[0])<<16 | uint32(block[1])<<8 | uint32(block[2])
		if t == 0 {
			break
		}
		c, n1 := binary.Uvarint(block[3:])
		if n1 <= 0 {
			ix.corrupt()
			return 0, 0
		}
		o, n2 := binary.Uvarint(block[3+n1:])
		if n2 <= 0 {
			ix.corrupt()
			return 0, 0
		}
		offset += int(o)
		if t == trigram {
			return int(c), offset
		}
		block = block[3+n1+n2:]
	}
	return 0, 0
}

type postReader struct {
	ix       *Index
	count    int
	offset   int
	fileid   int
	restrict []int
	delta    deltaReader
}

func (r *postReader) init(ix *Index, trigram uint32, restrict []int) {
	count, offset := ix.findList(trigram)
	if count == 0 {
		return
	}
	r.ix = ix
	r.count = count
	r.offset = offset
	r.fileid = -1
	r.delta.init(ix, ix.slice(ix.postData+offset+3, -1))
	r.restrict = restrict
}

func (r *postReader) max() int {
	return r.count
}

func (r *postReader) next() bool {
	if r.ix == nil {
		return false
	}
	for r.count > 0 {
		r.count--
		delta := r.delta.next()
		if delta <= 0 {
			r.ix.corrupt()
			return false
		}
		r.fileid += delta
		if r.restrict != nil {
			i := 0
			for i < len(r.restrict) && r.restrict[i] < r.fileid {
				i++
			}
			r.restrict = r.restrict[i:]
			if len(r.restrict) == 0 || r.restrict[0] != r.fileid {
				continue
			}
		}
		return true
	}
	if r.delta.next() != 0 {
		r.ix.corrupt()
	}
	r.delta.clearBits()
	r.fileid = -1
	return false
}

// PostingList returns the sorted list of file IDs containing trigram.
func (ix *Index) PostingList(trigram uint32) []int {
	return ix.postingList(trigram, nil)
}

func (ix *Index) postingList(trigram uint32, restrict []int) []int {
	var r postReader
	r.init(ix, trigram, restrict)
	x := make([]int, 0, r.max())
	for r.next() {
		x = append(x, r.fileid)
	}
	return x
}

// PostingAnd intersects list with the posting list for trigram.
func (ix *Index) PostingAnd(list []int, trigram uint32) []int {
	return ix.postingAnd(list, trigram, nil)
}

func (ix *Index) postingAnd(list []int, trigram uint32, restrict []int) []int {
	var r postReader
	r.init(ix, trigram, restrict)
	x := list[:0]
	i := 0
	for r.next() {
		fileid := r.fileid
		for i < len(list) && list[i] < fileid {
			i++
		}
		if i < len(list) && list[i] == fileid {
			x = append(x, fileid)
			i++
		}
	}
	return x
}

// PostingOr unions list with the posting list for trigram.
func (ix *Index) PostingOr(list []int, trigram uint32) []int {
	return ix.postingOr(list, trigram, nil)
}

func (ix *Index) postingOr(list []int, trigram uint32, restrict []int) []int {
	var r postReader
	r.init(ix, trigram, restrict)
	x := make([]int, 0, len(list)+r.max())
	i := 0
	for r.next() {
		fileid := r.fileid
		for i < len(list) && list[i] < fileid {
			x = append(x, list[i])
			i++
		}
		x = append(x, fileid)
		if i < len(list) && list[i] == fileid {
			i++
		}
	}
	x = append(x, list[i:]...)
	return x
}

// PostingQuery evaluates q against the index, returning the sorted
// list of matching file IDs.
func (ix *Index) PostingQuery(q *Query) []int {
	return ix.postingQuery(q, nil)
}

func (ix *Index) postingQuery(q *Query, restrict []int) (ret []int) {
	var list []int
	switch q.Op {
	case QNone:
		// nothing
	case QAll:
		if restrict != nil {
			return restrict
		}
		list = make([]int, ix.numName)
		for i := range list {
			list[i] = i
		}
		return list
	case QAnd:
		for _, t := range q.Trigram {
			tri := uint32(t[0])<<16 | uint32(t[1])<<8 | uint32(t[2])
			if list == nil {
				list = ix.postingList(tri, restrict)
			} else {
				list = ix.postingAnd(list, tri, restrict)
			}
			if len(list) == 0 {
				return nil
			}
		}
		for _, sub := range q.Sub {
			if list == nil {
				list = restrict
			}
			list = ix.postingQuery(sub, list)
			if len(list) == 0 {
				return nil
			}
		}
	case QOr:
		for _, t := range q.Trigram {
			tri := uint32(t[0])<<16 | uint32(t[1])<<8 | uint32(t[2])
			if list == nil {
				list = ix.postingList(tri, restrict)
			} else {
				list = ix.postingOr(list, tri, restrict)
			}
		}
		for _, sub := range q.Sub {
			list1 := ix.postingQuery(sub, restrict)
			list = mergeOr(list, list1)
		}
	}
	return list
}

func mergeOr(l1, l2 []int) []int {
	var l []int
	i, j := 0, 0
	for i < len(l1) || j < len(l2) {
		switch {
		case j == len(l2) || (i < len(l1) && l1[i] < l2[j]):
			l = append(l, l1[i])
			i++
		case i == len(l1) || (j < len(l2) && l1[i] > l2[j]):
			l = append(l, l2[j])
			j++
		case l1[i] == l2[j]:
			l = append(l, l1[i])
			i++
			j++
		}
	}
	return l
}

// mmap maps the given file into memory for read-only access.
func mmap(file string) (*mmapData, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	return mmapFile(f)
}

// File returns the path of the index file to use, following the same
// rule as the csearch/cindex tools: $CSEARCHINDEX if set; otherwise
// the nearest .csearchindex found by walking up from the current
// directory to the root; otherwise $HOME/.csearchindex.
func File() string {
	if f := os.Getenv("CSEARCHINDEX"); f != "" {
		return f
	}
	if dir, err := os.Getwd(); err == nil {
		for {
			candidate := filepath.Join(dir, ".csearchindex")
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	home := os.Getenv("HOME")
	if runtime.GOOS == "windows" && home == "" {
		home = os.Getenv("USERPROFILE")
	}
	return filepath.Clean(home + "/.csearchindex")
}
