// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

// Index writing. See read.go for details of the on-disk format.
//
// It would suffice to make a single large list of (trigram, file#) pairs
// while processing the files one at a time, sort that list by trigram,
// and then create the posting lists from subsequences of the list.
// However, we do not assume that the entire index fits in memory.
// Instead, we sort the list and append it as a new chunk to a scratch
// file each time it reaches its maximum in-memory size, and then at the
// end we create the final posting lists by merging the chunks (and the
// in-memory remainder) as we read them back in.

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hugeproblem/codesearch/sparse"
)

// Tuning constants for detecting text files.
// A file is assumed not to be text (and thus not indexed) if it
// contains a NUL byte, an invalid UTF-8 sequence, if it is longer
// than maxFileLen bytes, if it contains a line longer than
// maxLineLen bytes, or if it contains more than maxTextTrigrams
// distinct trigrams.
const (
	maxFileLen      = 1 << 30
	maxLineLen      = 2000
	maxTextTrigrams = 20000
)

const npost = 64 << 20 / 8 // 64 MB worth of post entries

// A Writer creates an on-disk index corresponding to a set of files.
// Create a Writer with Create, add every root and file with AddRoots
// and Add/AddFile, then call Flush exactly once.
type Writer struct {
	LogSkip bool // log information about skipped files
	Verbose bool // log status during Flush

	trigram *sparse.Set // trigrams for the file currently being added
	buf     [8]byte     // scratch

	roots []Path

	names      *PathWriter
	nameData   *Buffer // temp file holding the prefix-compressed name list
	nameIndex  *Buffer // temp file holding the name-list group index
	numName    int     // number of names written so far
	nameLast   Path     // last name written, for sort-order validation
	totalBytes int64

	post       []postEntry // in-memory (trigram, file#) pairs not yet spilled
	postFile   *Buffer     // scratch file holding spilled, sorted chunks
	postEnds   []int       // cumulative end offset of each spilled chunk
	postIndex  *Buffer     // temp file holding the posting-list index
	numTrigram int         // number of distinct trigrams written, set by mergePost

	inbuf []byte  // input buffer reused across Add calls
	main  *Buffer // the final index file
}

// Create returns a new Writer that will write the index to file.
func Create(file string) (*Writer, error) {
	nameData, err := bufCreate("")
	if err != nil {
		return nil, err
	}
	nameIndex, err := bufCreate("")
	if err != nil {
		return nil, err
	}
	postFile, err := bufCreate("")
	if err != nil {
		return nil, err
	}
	postIndex, err := bufCreate("")
	if err != nil {
		return nil, err
	}
	main, err := bufCreate(file)
	if err != nil {
		return nil, err
	}
	ix := &Writer{
		trigram:   sparse.NewSet(1 << 24),
		nameData:  nameData,
		nameIndex: nameIndex,
		postFile:  postFile,
		postIndex: postIndex,
		main:      main,
		post:      make([]postEntry, 0, npost),
		inbuf:     make([]byte, 1<<20),
	}
	ix.names = NewPathWriter(ix.nameData, ix.nameIndex, nameGroupSize)
	return ix, nil
}

// isValidName reports whether name is safe to store in the index. We
// reject control characters because the v2 name list uses them
// nowhere, so a stray one usually indicates the caller fed us binary
// data by mistake.
func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < ' ' {
			return false
		}
	}
	return true
}

// AddRoots adds roots to the index's root list. Roots must be added
// before any call to Add/AddFile and must be supplied in sorted
// order (by Path.Compare).
func (ix *Writer) AddRoots(roots []Path) {
	ix.roots = append(ix.roots, roots...)
}

// AddFile adds the file with the given name (opened with os.Open) to
// the index.
func (ix *Writer) AddFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return ix.Add(name, f)
}

// Add adds the contents of f to the index under the given name. Add
// returns nil (not an error) when the file is skipped for being
// binary, too large, or having overlong lines or too many distinct
// trigrams to plausibly be source code; those are recoverable, not
// fatal, conditions. It returns an error for a malformed name or an
// I/O failure reading f.
func (ix *Writer) Add(name string, f io.Reader) error {
	if !isValidName(name) {
		return fmt.Errorf("malformed name %q", name)
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("%q: file has NUL byte in name", name)
	}

	ix.trigram.Reset()
	var (
		c       byte
		i       = 0
		buf     = ix.inbuf[:0]
		tv      = uint32(0)
		n       = int64(0)
		lineLen = 0
	)
	for {
		tv = (tv << 8) & (1<<24 - 1)
		if i >= len(buf) {
			nr, err := f.Read(buf[:cap(buf)])
			if nr == 0 {
				if err != nil {
					if err == io.EOF {
						break
					}
					return fmt.Errorf("%s: %w", name, err)
				}
				return fmt.Errorf("%s: 0-length read", name)
			}
			buf = buf[:nr]
			i = 0
		}
		c = buf[i]
		i++
		tv |= uint32(c)
		if n++; n >= 3 {
			ix.trigram.Add(tv)
		}
		if c == 0 {
			if ix.LogSkip {
				logSkip("%s: contains NUL, ignoring", name)
			}
			return nil
		}
		if !validUTF8((tv>>8)&0xFF, tv&0xFF) {
			if ix.LogSkip {
				logSkip("%s: invalid UTF-8, ignoring", name)
			}
			return nil
		}
		if n > maxFileLen {
			if ix.LogSkip {
				logSkip("%s: file too long (%d bytes), ignoring", name, n)
			}
			return nil
		}
		if lineLen++; lineLen > maxLineLen {
			if ix.LogSkip {
				logSkip("%s: line too long (%d bytes), ignoring", name, lineLen)
			}
			return nil
		}
		if c == '\n' {
			lineLen = 0
		}
	}
	if ix.trigram.Len() > maxTextTrigrams {
		if ix.LogSkip {
			logSkip("%s: too many trigrams (%d), probably not text, ignoring", name, ix.trigram.Len())
		}
		return nil
	}
	ix.totalBytes += n

	if ix.Verbose {
		logStatus("%d %d %s", n, ix.trigram.Len(), name)
	}

	fileid, err := ix.addName(MakePath(name))
	if err != nil {
		return err
	}
	for _, tg := range ix.trigram.Dense() {
		if len(ix.post) >= cap(ix.post) {
			ix.flushPost()
		}
		ix.post = append(ix.post, makePostEntry(tg, fileid))
	}
	return ix.main.Err()
}

// addName adds name to the index, returning its assigned file ID.
func (ix *Writer) addName(name Path) (int, error) {
	if name.String() == "" {
		return 0, fmt.Errorf("index of empty name")
	}
	if name.Compare(ix.nameLast) <= 0 {
		return 0, fmt.Errorf("names not sorted: %q <= %q", name, ix.nameLast)
	}
	id := ix.numName
	ix.numName++
	ix.nameLast = name
	ix.names.Write(name)
	return id, ix.nameData.Err()
}

// Flush writes the accumulated roots, names, and posting lists to the
// target file and closes it. Flush must be called exactly once, after
// all files have been added.
func (ix *Writer) Flush() error {
	var off [8]int

	ix.main.WriteString(magic)

	// Root list.
	off[0] = ix.main.Offset()
	roots := NewPathWriter(ix.main, nil, 0)
	for _, r := range ix.roots {
		roots.Write(r)
	}
	off[1] = roots.Count()
	ix.main.Align(16)

	// Name list.
	off[2] = ix.main.Offset()
	if err := copyFile(ix.main, ix.nameData); err != nil {
		return err
	}
	off[3] = ix.numName
	ix.main.Align(16)

	// Posting lists.
	off[4] = ix.main.Offset()
	if err := ix.mergePost(ix.main); err != nil {
		return err
	}
	off[5] = ix.numTrigram
	ix.main.Align(16)

	// Name index.
	off[6] = ix.main.Offset()
	if err := copyFile(ix.main, ix.nameIndex); err != nil {
		return err
	}
	ix.main.Align(16)

	// Posting list index.
	off[7] = ix.main.Offset()
	if err := copyFile(ix.main, ix.postIndex); err != nil {
		return err
	}

	for _, v := range off {
		ix.main.WriteUint(v)
	}
	ix.main.WriteString(trailerMagic)

	if err := ix.main.Err(); err != nil {
		return err
	}
	ix.main.Flush()
	if err := ix.main.Err(); err != nil {
		return err
	}
	if err := ix.main.file.Close(); err != nil {
		return err
	}

	os.Remove(ix.nameData.name)
	os.Remove(ix.postFile.name)
	os.Remove(ix.nameIndex.name)
	os.Remove(ix.postIndex.name)

	if ix.Verbose {
		logStatus("%d data bytes, %d index bytes", ix.totalBytes, ix.main.Offset())
	}
	return nil
}

// flushPost writes ix.post, sorted, to the scratch postFile as a new
// chunk and clears the in-memory slice.
func (ix *Writer) flushPost() {
	if ix.Verbose {
		logStatus("flush %d entries to %s", len(ix.post), ix.postFile.name)
	}
	sortPost(ix.post)

	var w postDataWriter
	w.init(ix.postFile, nil)
	trigram := invalidTrigram
	for _, p := range ix.post {
		if t := p.trigram(); t != trigram {
			if trigram != invalidTrigram {
				w.endTrigram()
			}
			w.trigram(t)
			trigram = t
		}
		w.fileid(p.fileid())
	}
	if trigram != invalidTrigram {
		w.endTrigram()
	}
	ix.post = ix.post[:0]
	ix.postEnds = append(ix.postEnds, ix.postFile.Offset())
}

// mergePost merges the spilled scratch chunks and the remaining
// in-memory entries into the final posting lists, written to out,
// recording the posting-list index in ix.postIndex as it goes.
func (ix *Writer) mergePost(out *Buffer) error {
	var h postHeap

	if len(ix.postEnds) > 0 {
		if ix.Verbose {
			logStatus("merge %d spilled chunk(s) + memory", len(ix.postEnds))
		}
		f, err := ix.postFile.finish()
		if err != nil {
			return err
		}
		data, err := mmapFile(f)
		if err != nil {
			return err
		}
		h.addFile(data, ix.postEnds)
	}
	sortPost(ix.post)
	h.addMem(ix.post)

	var w postDataWriter
	w.init(out, ix.postIndex)

	e := h.next()
	for {
		t := e.trigram()
		w.trigram(t)
		for ; e.trigram() == t && t != invalidTrigram; e = h.next() {
			w.fileid(e.fileid())
		}
		w.endTrigram()
		if t == invalidTrigram {
			break
		}
	}
	w.flush()
	ix.numTrigram = w.numTrigram
	return out.Err()
}

// validUTF8 reports whether the byte pair can appear in a valid
// sequence of UTF-8-encoded code points.
func validUTF8(c1, c2 uint32) bool {
	switch {
	case c1 < 0x80:
		return c2 < 0x80 || 0xc0 <= c2 && c2 < 0xf8
	case c1 < 0xc0:
		return c2 < 0xf8
	case c1 < 0xf8:
		return 0x80 <= c2 && c2 < 0xc0
	}
	return false
}
