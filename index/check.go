// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import "encoding/binary"

// Check reads the name list and every posting list of the index and
// reports the first
// inconsistency found, without relying on any particular query
// touching the bad region. It is meant for cdump/test use, not the
// hot query path: a normal Open + PostingQuery never walks sections
// it doesn't need.
func (ix *Index) Check() error {
	for range ix.NamesAt(0, ix.numName).All() {
	}
	if err := ix.Err(); err != nil {
		return err
	}

	blocks := ix.slice(ix.postIndex, ix.numPostBlock*postBlockSize)
	post := ix.slice(ix.postData, ix.nameIndex-ix.postData)
	for len(blocks) >= postBlockSize {
		b := blocks[:postBlockSize]
		blocks = blocks[postBlockSize:]
		offset := 0
		for len(b) > 3 && (b[0] != 0 || b[1] != 0 || b[2] != 0) {
			trigramBytes := b[:3]
			count, l1 := binary.Uvarint(b[3:])
			if l1 <= 0 {
				ix.corrupt()
				return ix.Err()
			}
			delta, l2 := binary.Uvarint(b[3+l1:])
			if l2 <= 0 {
				ix.corrupt()
				return ix.Err()
			}
			offset += int(delta)
			b = b[3+l1+l2:]

			plist := post[offset:]
			if len(plist) < 3 || string(plist[:3]) != string(trigramBytes) {
				ix.corrupt()
				return ix.Err()
			}
			var dr deltaReader
			dr.init(ix, plist[3:])
			for i := uint64(0); i < count; i++ {
				if dr.next() < 0 {
					return ix.Err()
				}
			}
		}
	}
	return nil
}
