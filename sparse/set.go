// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse implements a sparse set of uint32s, used while
// computing the set of distinct trigrams in a file being indexed.
package sparse

// A Set is a sparse set of uint32 values in the range [0, max).
// Add, Has, and Reset all run in O(1); Reset does not touch the
// sparse array, so its cost does not depend on max.
type Set struct {
	dense  []uint32
	sparse []uint32
}

// NewSet returns a new Set that can hold values in [0, max).
func NewSet(max uint32) *Set {
	return &Set{
		sparse: make([]uint32, max),
	}
}

// Reset clears the set to be empty.
func (s *Set) Reset() {
	s.dense = s.dense[:0]
}

// Add adds x to the set.
func (s *Set) Add(x uint32) {
	v := s.sparse[x]
	if v < uint32(len(s.dense)) && s.dense[v] == x {
		return
	}
	n := uint32(len(s.dense))
	s.sparse[x] = n
	s.dense = append(s.dense, x)
}

// Has reports whether x is in the set.
func (s *Set) Has(x uint32) bool {
	v := s.sparse[x]
	return v < uint32(len(s.dense)) && s.dense[v] == x
}

// Dense returns the values in the set, in the order they were added.
// The caller must not modify the returned slice.
func (s *Set) Dense() []uint32 {
	return s.dense
}

// Len returns the number of values in the set.
func (s *Set) Len() int {
	return len(s.dense)
}
