// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"encoding/binary"
	"os"
	"strings"
)

// nameGroupSize is the number of consecutive names sharing one
// prefix-compression run; every nameGroupSize'th name is forced to
// carry a zero-length prefix so random access can resume there.
const nameGroupSize = 16

// A Path is a path stored in the index, either in the root list or
// the file name list. Paths compare using Compare, not plain string
// comparison: a path is ordered immediately before any path it is a
// strict prefix of.
type Path struct {
	s string
}

// MakePath wraps s as a Path.
func MakePath(s string) Path { return Path{s} }

func (p Path) String() string { return p.s }

// HasPathPrefix reports whether p is parent or a descendant of parent.
func (p Path) HasPathPrefix(parent Path) bool {
	if !strings.HasPrefix(p.s, parent.s) {
		return false
	}
	if p.s == parent.s {
		return true
	}
	if n := len(parent.s); n > 0 && (parent.s[n-1] == '/' || parent.s[n-1] == os.PathSeparator) {
		return true
	}
	return p.s[len(parent.s)] == '/' || p.s[len(parent.s)] == os.PathSeparator
}

// Compare returns the comparison of p and q, treating path separators
// as sorting before any other byte so that "x/y" sorts before
// "x.foo".
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p.s) && i < len(q.s); i++ {
		pi, qi := p.s[i], q.s[i]
		if pi == '/' || pi == os.PathSeparator {
			pi = 0
		}
		if qi == '/' || qi == os.PathSeparator {
			qi = 0
		}
		if pi != qi {
			return int(pi) - int(qi)
		}
	}
	return len(p.s) - len(q.s)
}

// A PathWriter writes a sorted sequence of Paths to data, prefix
// compressed in groups of group (nameGroupSize for the name list, 0
// for the un-grouped root list), and records the byte offset of each
// group's first path to index, if non-nil.
type PathWriter struct {
	data  *Buffer
	index *Buffer
	group int
	start int
	n     int
	last  Path
}

func NewPathWriter(data, index *Buffer, group int) *PathWriter {
	return &PathWriter{data: data, index: index, group: group, start: data.Offset()}
}

// Write appends p, which must sort strictly after the previously
// written path.
func (w *PathWriter) Write(p Path) {
	pre := 0
	if w.group == 0 && w.n == 0 || w.group > 0 && w.n%w.group == 0 {
		if w.index != nil {
			w.index.WriteUint(w.data.Offset() - w.start)
		}
	} else {
		for pre < len(w.last.s) && pre < len(p.s) && w.last.s[pre] == p.s[pre] {
			pre++
		}
	}
	w.data.WriteVarint(pre)
	w.data.WriteVarint(len(p.s) - pre)
	w.data.WriteString(p.s[pre:])
	w.last = p
	w.n++
}

// Count returns the number of paths written so far.
func (w *PathWriter) Count() int { return w.n }

// A PathReader reads back a sequence written by PathWriter.
type PathReader struct {
	data  []byte
	path  Path
	limit int
}

// NewPathReader returns a reader over data that will yield at most
// limit paths (limit < 0 means unbounded; the sequence also ends at
// the first malformed entry, which read.go treats as end-of-section).
func NewPathReader(data []byte, limit int) *PathReader {
	r := &PathReader{data: data, limit: limit}
	r.Next()
	return r
}

// Valid reports whether Path returns a meaningful value.
func (r *PathReader) Valid() bool { return r.path.s != "" }

// Next advances to the following path, returning false when the
// sequence is exhausted.
func (r *PathReader) Next() bool {
	if r.limit == 0 {
		r.path.s = ""
		r.data = nil
		return false
	}
	if r.limit > 0 {
		r.limit--
	}
	pre, w := binary.Uvarint(r.data)
	if w <= 0 || pre > uint64(len(r.path.s)) {
		r.path.s = ""
		r.data = nil
		return false
	}
	r.data = r.data[w:]

	n, w := binary.Uvarint(r.data)
	if w <= 0 || n > uint64(len(r.data)-w) {
		r.path.s = ""
		r.data = nil
		return false
	}
	r.data = r.data[w:]
	r.path.s = r.path.s[:pre] + string(r.data[:n])
	r.data = r.data[n:]
	return true
}

func (r *PathReader) Path() Path { return r.path }

// All collects every remaining path into a slice.
func (r *PathReader) All() []Path {
	var all []Path
	if !r.Valid() {
		return all
	}
	for {
		all = append(all, r.Path())
		if !r.Next() {
			break
		}
	}
	return all
}
