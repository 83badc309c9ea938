// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cdump prints the contents of a trigram index: its roots, every
// indexed name, and every trigram's (count, offset) posting-index
// entry. It is a read-only inspection tool, not part of the search
// path.
package main

import (
	"fmt"
	"os"

	"github.com/hugeproblem/codesearch/index"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: cdump indexfile")
		os.Exit(2)
	}

	ix, err := index.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer ix.Close()

	fmt.Printf("roots (%d):\n", ix.NumRoot())
	for _, r := range ix.Roots().All() {
		fmt.Printf("\t%s\n", r.String())
	}

	fmt.Printf("names (%d), name data at offset %d (%d bytes):\n", ix.NumName(), ix.NameDataOffset(), ix.NameDataLen())
	for i, n := range ix.Names(0, ix.NumName()) {
		fmt.Printf("\t%d\t%s\n", i, n.String())
	}

	fmt.Println("trigrams:")
	for _, e := range ix.Trigrams() {
		fmt.Printf("\t%s\tcount=%d\toffset=%d\n", trigramString(e.Trigram), e.Count, e.Offset)
	}

	if err := ix.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// trigramString renders a packed 3-byte trigram as three
// printable-or-'.' characters.
func trigramString(t uint32) string {
	b := [3]byte{byte(t >> 16), byte(t >> 8), byte(t)}
	for i, c := range b {
		if c < ' ' || c > '~' {
			b[i] = '.'
		}
	}
	return string(b[:])
}
