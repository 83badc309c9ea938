// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathCompareOrdersSeparatorFirst(t *testing.T) {
	assert.True(t, MakePath("x").Compare(MakePath("x/y")) < 0)
	assert.True(t, MakePath("x/y").Compare(MakePath("x.foo")) < 0)
	assert.Equal(t, 0, MakePath("abc").Compare(MakePath("abc")))
}

func TestPathHasPathPrefix(t *testing.T) {
	assert.True(t, MakePath("a/b").HasPathPrefix(MakePath("a")))
	assert.True(t, MakePath("a").HasPathPrefix(MakePath("a")))
	assert.False(t, MakePath("ab").HasPathPrefix(MakePath("a")))
	assert.False(t, MakePath("a/b").HasPathPrefix(MakePath("b")))
}

func TestPathWriterReaderRoundTrip(t *testing.T) {
	paths := []Path{
		MakePath("abcdef"),
		MakePath("abcx"),
		MakePath("abcx/y"),
		MakePath("abd"),
	}

	data, err := bufCreate("")
	require.NoError(t, err)

	w := NewPathWriter(data, nil, 0)
	for _, p := range paths {
		w.Write(p)
	}
	assert.Equal(t, len(paths), w.Count())

	f, err := data.finish()
	require.NoError(t, err)
	st, err := f.Stat()
	require.NoError(t, err)
	buf := make([]byte, st.Size())
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)

	r := NewPathReader(buf, len(paths))
	got := r.All()
	if assert.Len(t, got, len(paths)) {
		for i, p := range paths {
			assert.Equal(t, p.String(), got[i].String())
		}
	}
}

func TestPathWriterGroupsForceZeroPrefix(t *testing.T) {
	data, err := bufCreate("")
	if err != nil {
		t.Fatal(err)
	}
	defer data.Flush()
	index, err := bufCreate("")
	if err != nil {
		t.Fatal(err)
	}
	defer index.Flush()

	w := NewPathWriter(data, index, 2)
	names := []string{"a", "aa", "ab", "b", "ba", "bb"}
	for _, n := range names {
		w.Write(MakePath(n))
	}
	// One index entry every 2 names: 3 groups of 2.
	assert.Equal(t, 3*8, index.Offset())
}
