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

var mergePaths1 = []string{
	"/a",
	"/b",
	"/c",
}

var mergePaths2 = []string{
	"/b",
	"/cc",
}

var mergeFiles1 = map[string]string{
	"/a/x":  "hello world",
	"/a/y":  "goodbye world",
	"/b/xx": "now is the time",
	"/b/xy": "for all good men",
	"/c/ab": "give me all the potatoes",
	"/c/de": "or give me death now",
}

var mergeFiles2 = map[string]string{
	"/b/www": "world wide indeed",
	"/b/xx":  "no, not now",
	"/b/yy":  "first potatoes, now liberty?",
	"/cc":    "come to the aid of his potatoes",
}

func TestMerge(t *testing.T) {
	out1 := tempFileName(t)
	out2 := tempFileName(t)
	out3 := tempFileName(t)
	defer os.Remove(out1)
	defer os.Remove(out2)
	defer os.Remove(out3)

	buildIndex(t, out1, mergePaths1, mergeFiles1)
	buildIndex(t, out2, mergePaths2, mergeFiles2)

	require.NoError(t, Merge(out3, out1, out2))

	ix1, err := Open(out1)
	require.NoError(t, err)
	defer ix1.Close()
	ix2, err := Open(out2)
	require.NoError(t, err)
	defer ix2.Close()
	ix3, err := Open(out3)
	require.NoError(t, err)
	defer ix3.Close()

	checkFiles := func(ix *Index, want ...string) {
		for i, s := range want {
			assert.Equal(t, s, ix.Name(i).String())
		}
	}

	checkFiles(ix1, "/a/x", "/a/y", "/b/xx", "/b/xy", "/c/ab", "/c/de")
	checkFiles(ix2, "/b/www", "/b/xx", "/b/yy", "/cc")
	checkFiles(ix3, "/a/x", "/a/y", "/b/www", "/b/xx", "/b/yy", "/c/ab", "/c/de", "/cc")

	check := func(ix *Index, trig string, want ...int) {
		got := ix.PostingList(tri(trig[0], trig[1], trig[2]))
		assert.Equal(t, want, got)
	}

	check(ix1, "wor", 0, 1)
	check(ix1, "now", 2, 5)
	check(ix1, "all", 3, 4)

	check(ix2, "now", 1, 2)

	check(ix3, "all", 5)
	check(ix3, "wor", 0, 1, 2)
	check(ix3, "now", 3, 4, 6)
	check(ix3, "pot", 4, 5, 7)
}
