// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import "os"

// mmapData is memory-mapped, read-only data backing an open Index or
// a spilled posting-entry scratch file. mmapFile and munmap are
// implemented per-platform in mmap_unix.go and mmap_windows.go.
type mmapData struct {
	f *os.File
	d []byte
}
