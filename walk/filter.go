// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package walk

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSkip reports whether path should be skipped by default:
// dotfiles, editor/backup files ('#'-prefixed or '~'-suffixed), the
// same heuristic cindex has always used to avoid indexing its own
// scratch and VCS metadata files. --all-files disables this check.
func DefaultSkip(path string) bool {
	base := filepath.Base(path)
	if base == "" {
		return false
	}
	return base[0] == '.' || base[0] == '#' || base[len(base)-1] == '~'
}

// MatchExtensions reports whether path's extension is among exts
// (each given without its leading dot, e.g. "go", "rs"). An empty
// exts list matches every path, i.e. no filtering.
func MatchExtensions(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	slash := filepath.ToSlash(path)
	for _, ext := range exts {
		pattern := "**/*." + strings.TrimPrefix(ext, ".")
		if matched, err := doublestar.Match(pattern, slash); err == nil && matched {
			return true
		}
	}
	return false
}
