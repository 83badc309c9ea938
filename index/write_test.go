// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildIndex builds an index at out from the given root paths and
// name-to-content map, adding names in the sorted order Add requires.
func buildIndex(t *testing.T, out string, paths []string, files map[string]string) {
	t.Helper()
	ix, err := Create(out)
	require.NoError(t, err)

	var roots []Path
	for _, p := range paths {
		roots = append(roots, MakePath(p))
	}
	ix.AddRoots(roots)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return MakePath(names[i]).Compare(MakePath(names[j])) < 0
	})
	for _, name := range names {
		require.NoError(t, ix.Add(name, strings.NewReader(files[name])))
	}
	require.NoError(t, ix.Flush())
}

func TestCreateEmptyIndex(t *testing.T) {
	out := tempFileName(t)
	defer os.Remove(out)

	ix, err := Create(out)
	require.NoError(t, err)
	require.NoError(t, ix.Flush())

	r, err := Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 0, r.numName)
}

func TestAddRejectsOutOfOrderNames(t *testing.T) {
	out := tempFileName(t)
	defer os.Remove(out)

	ix, err := Create(out)
	require.NoError(t, err)
	require.NoError(t, ix.Add("/b", strings.NewReader("b")))
	err = ix.Add("/a", strings.NewReader("a"))
	require.Error(t, err)
}

func tempFileName(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "index-test")
	require.NoError(t, err)
	name := f.Name()
	require.NoError(t, f.Close())
	return name
}
