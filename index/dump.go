// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import "encoding/binary"

// TrigramEntry describes one posting-list index record: how many
// files contain Trigram, and the byte offset of its posting list
// within the posts section.
type TrigramEntry struct {
	Trigram uint32
	Count   int
	Offset  int
}

// NumName returns the number of indexed files.
func (ix *Index) NumName() int { return ix.numName }

// NumRoot returns the number of indexed roots.
func (ix *Index) NumRoot() int { return ix.numPath }

// NameDataOffset and NameDataLen describe the byte range of the
// prefix-compressed name table, for tools that want to inspect the
// raw section rather than decode it (cdump's header dump).
func (ix *Index) NameDataOffset() int { return ix.nameData }
func (ix *Index) NameDataLen() int    { return ix.postData - ix.nameData }

// Trigrams walks the posting-list index in trigram order, returning
// one TrigramEntry per non-empty posting list. It is read-side
// tooling only (cdump); the hot query path uses findList's
// binary search instead.
func (ix *Index) Trigrams() []TrigramEntry {
	var out []TrigramEntry
	blocks := ix.slice(ix.postIndex, ix.numPostBlock*postBlockSize)
	for len(blocks) >= postBlockSize {
		block := blocks[:postBlockSize]
		blocks = blocks[postBlockSize:]
		offset := 0
		for len(block) >= 3 {
			t := uint32(block[0])<<16 | uint32(block[1])<<8 | uint32(block[2])
			if t == 0 {
				break
			}
			c, n1 := binary.Uvarint(block[3:])
			if n1 <= 0 {
				ix.corrupt()
				return out
			}
			o, n2 := binary.Uvarint(block[3+n1:])
			if n2 <= 0 {
				ix.corrupt()
				return out
			}
			offset += int(o)
			out = append(out, TrigramEntry{Trigram: t, Count: int(c), Offset: offset})
			block = block[3+n1+n2:]
		}
	}
	return out
}
