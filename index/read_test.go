// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postFiles = map[string]string{
	"file0": "",
	"file1": "Google Code Search",
	"file2": "Google Code Project Hosting",
	"file3": "Google Web Search",
}

func tri(x, y, z byte) uint32 {
	return uint32(x)<<16 | uint32(y)<<8 | uint32(z)
}

func TestTrivialPosting(t *testing.T) {
	out := tempFileName(t)
	defer os.Remove(out)
	buildIndex(t, out, nil, postFiles)

	ix, err := Open(out)
	require.NoError(t, err)
	defer ix.Close()

	assert.Equal(t, []int{1, 3}, ix.PostingList(tri('S', 'e', 'a')))
	assert.Equal(t, []int{1, 2, 3}, ix.PostingList(tri('G', 'o', 'o')))
	assert.Equal(t, []int{1, 3}, ix.PostingAnd([]int{1, 3}, tri('G', 'o', 'o')))
	assert.Equal(t, []int{1, 3}, ix.PostingAnd([]int{1, 2, 3}, tri('S', 'e', 'a')))
	assert.Equal(t, []int{1, 2, 3}, ix.PostingOr([]int{1, 3}, tri('G', 'o', 'o')))
	assert.Equal(t, []int{1, 2, 3}, ix.PostingOr([]int{1, 2, 3}, tri('S', 'e', 'a')))
	assert.Nil(t, ix.Err())
}

func TestPostingQuery(t *testing.T) {
	out := tempFileName(t)
	defer os.Remove(out)
	buildIndex(t, out, nil, postFiles)

	ix, err := Open(out)
	require.NoError(t, err)
	defer ix.Close()

	and := &Query{Op: QAnd, Trigram: []string{"Goo", "Sea"}}
	assert.Equal(t, []int{1, 3}, ix.PostingQuery(and))

	or := &Query{Op: QOr, Trigram: []string{"Goo", "Web"}}
	assert.Equal(t, []int{1, 2, 3}, ix.PostingQuery(or))

	assert.Equal(t, []int{0, 1, 2, 3}, ix.PostingQuery(QueryAll))
	assert.Nil(t, ix.PostingQuery(QueryNone))
}

func TestNames(t *testing.T) {
	out := tempFileName(t)
	defer os.Remove(out)
	buildIndex(t, out, nil, postFiles)

	ix, err := Open(out)
	require.NoError(t, err)
	defer ix.Close()

	var got []string
	for _, p := range ix.Names(0, ix.numName) {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"file0", "file1", "file2", "file3"}, got)
}
