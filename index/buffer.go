// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// A Buffer is a buffered file writer used while building or
// merging an index. It keeps the first error it encounters (the same
// sticky-error idiom bufio.Writer uses) so callers can issue a long
// sequence of writes and check Err once at the end, instead of
// threading an error return through every WriteX call.
type Buffer struct {
	name    string
	file    *os.File
	fileOff int64
	buf     []byte
	err     error
}

// bufCreate creates a new file with the given name and returns a
// corresponding Buffer. If name is empty, bufCreate uses a temporary
// file, which the caller is responsible for removing.
func bufCreate(name string) (*Buffer, error) {
	var (
		f   *os.File
		err error
	)
	if name != "" {
		f, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	} else {
		f, err = os.CreateTemp("", "csearch")
	}
	if err != nil {
		return nil, err
	}
	return &Buffer{
		name: f.Name(),
		buf:  make([]byte, 0, 256<<10),
		file: f,
	}, nil
}

// Err returns the first error encountered by the Buffer, if any.
func (b *Buffer) Err() error { return b.err }

func (b *Buffer) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Buffer) Write(x []byte) {
	if b.err != nil {
		return
	}
	n := cap(b.buf) - len(b.buf)
	if len(x) > n {
		b.Flush()
		if b.err != nil {
			return
		}
		if len(x) >= cap(b.buf) {
			if _, err := b.file.Write(x); err != nil {
				b.fail(fmt.Errorf("writing %s: %w", b.name, err))
				return
			}
			b.fileOff += int64(len(x))
			return
		}
	}
	b.buf = append(b.buf, x...)
}

func (b *Buffer) WriteByte(x byte) {
	if b.err != nil {
		return
	}
	if len(b.buf) >= cap(b.buf) {
		b.Flush()
		if b.err != nil {
			return
		}
	}
	b.buf = append(b.buf, x)
}

func (b *Buffer) WriteString(s string) {
	b.Write([]byte(s))
}

// Offset returns the current write offset.
func (b *Buffer) Offset() int {
	return int(b.fileOff) + len(b.buf)
}

func (b *Buffer) Flush() {
	if b.err != nil || len(b.buf) == 0 {
		return
	}
	n, err := b.file.Write(b.buf)
	if err != nil {
		b.fail(fmt.Errorf("writing %s: %w", b.name, err))
		return
	}
	if n != len(b.buf) {
		b.fail(fmt.Errorf("writing %s: short write", b.name))
		return
	}
	b.fileOff += int64(len(b.buf))
	b.buf = b.buf[:0]
}

// finish flushes the buffer to disk and returns an open file
// positioned at the start, ready for reading.
func (b *Buffer) finish() (*os.File, error) {
	b.Flush()
	if b.err != nil {
		return nil, b.err
	}
	if _, err := b.file.Seek(0, 0); err != nil {
		return nil, err
	}
	return b.file, nil
}

func (b *Buffer) WriteTrigram(t uint32) {
	if b.err != nil {
		return
	}
	if cap(b.buf)-len(b.buf) < 3 {
		b.Flush()
		if b.err != nil {
			return
		}
	}
	b.buf = append(b.buf, byte(t>>16), byte(t>>8), byte(t))
}

func (b *Buffer) WriteVarint(x int) {
	if b.err != nil {
		return
	}
	if x < 0 {
		b.fail(fmt.Errorf("WriteVarint of negative number %d", x))
		return
	}
	if cap(b.buf)-len(b.buf) < binary.MaxVarintLen64 {
		b.Flush()
		if b.err != nil {
			return
		}
	}
	b.buf = binary.AppendUvarint(b.buf, uint64(x))
}

// WriteUint writes x as an 8-byte big-endian value, the wire width
// used throughout the v2 index format.
func (b *Buffer) WriteUint(x int) {
	if b.err != nil {
		return
	}
	if x < 0 {
		b.fail(fmt.Errorf("WriteUint of negative number %d", x))
		return
	}
	if cap(b.buf)-len(b.buf) < 8 {
		b.Flush()
		if b.err != nil {
			return
		}
	}
	ux := uint64(x)
	b.buf = append(b.buf, byte(ux>>56), byte(ux>>48), byte(ux>>40), byte(ux>>32),
		byte(ux>>24), byte(ux>>16), byte(ux>>8), byte(ux))
}

// Align pads the buffer with zero bytes until its offset is a
// multiple of n, matching the 16-byte section alignment of the v2
// format (useful for debugging the file by eye; readers do not
// require it).
func (b *Buffer) Align(n int) {
	for b.Offset()%n != 0 {
		b.WriteByte(0)
	}
}

// copyFile flushes dst and src, then copies all of src's contents
// onto the end of dst, consuming src.
func copyFile(dst, src *Buffer) error {
	dst.Flush()
	if dst.err != nil {
		return dst.err
	}
	f, err := src.finish()
	if err != nil {
		return err
	}
	n, err := io.Copy(dst.file, f)
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", src.name, dst.name, err)
	}
	dst.fileOff += n
	return nil
}
