// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"bufio"
	"fmt"
	"os"
)

// CheckpointPath returns the checkpoint file associated with the index
// file at indexPath: one already-indexed absolute path per line,
// removed on successful Flush.
func CheckpointPath(indexPath string) string {
	return indexPath + ".checkpoint"
}

// ReadCheckpoint reads the set of paths already recorded in the
// checkpoint file at path. A missing checkpoint file is not an error;
// it simply yields an empty set (nothing has been indexed yet).
func ReadCheckpoint(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	defer f.Close()

	done := make(map[string]bool)
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for s.Scan() {
		line := s.Text()
		if line != "" {
			done[line] = true
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}
	return done, nil
}

// Checkpoint incrementally records indexed paths to a checkpoint file
// so a later run can resume with ReadCheckpoint instead of reindexing
// from scratch.
type Checkpoint struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// CreateCheckpoint opens (appending to, if present) the checkpoint
// file at path for writing.
func CreateCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Checkpoint{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Add records name as indexed. The caller decides when to Flush, e.g.
// every N accepted files (the --checkpoint-interval CLI option).
func (c *Checkpoint) Add(name string) error {
	_, err := fmt.Fprintln(c.w, name)
	return err
}

// Flush flushes buffered writes to disk without closing the file, so
// a crash between here and the next Add loses at most the in-flight
// batch, never the whole checkpoint.
func (c *Checkpoint) Flush() error {
	if err := c.w.Flush(); err != nil {
		return err
	}
	return c.f.Sync()
}

// Close flushes and closes the checkpoint file.
func (c *Checkpoint) Close() error {
	if err := c.Flush(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// Remove deletes the checkpoint file; call after a successful Flush of
// the index itself. A missing file is not an error.
func (c *Checkpoint) Remove() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
