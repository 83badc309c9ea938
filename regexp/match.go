// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regexp

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"
)

// A Regexp is the compiled form of a pattern used both to build the
// trigram query (via AnalyzeRegexp) and to confirm candidate files by
// scanning their lines.
type Regexp struct {
	re *regexp.Regexp
}

// Compile parses pattern and returns a Regexp usable with Grep.
func Compile(pattern string) (*Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regexp{re: re}, nil
}

func (r *Regexp) String() string { return r.re.String() }

// FindIndex returns the leftmost match's [start, end) byte offsets in
// b, or nil if there is none.
func (r *Regexp) FindIndex(b []byte) []int { return r.re.FindIndex(b) }

// Grep holds the state and output options for scanning candidate
// files line by line with the confirmed regexp, in the style of
// grep(1). The trigram index only narrows the candidate set; Grep is
// what actually decides whether, and where, a file matches.
type Grep struct {
	Regexp *Regexp   // regexp to confirm matches with
	Stdout io.Writer // output target
	Stderr io.Writer // error target

	L bool // list matching file names only
	C bool // print match counts only
	N bool // show line numbers
	H bool // omit file names
	V bool // show non-matching lines (line-oriented NOT, cgrep-only)

	HTML    bool // emit HTML output
	Match   bool // were any matches found?
	Matches int  // how many matches were found?
	Limit   int  // stop after this many matches (0 = unlimited)
	Limited bool // stopped early because of Limit

	PreContext  int // lines of context to print before a match
	PostContext int // lines of context to print after a match
}

func (g *Grep) esc(s string) string {
	if g.HTML {
		return html.EscapeString(s)
	}
	return s
}

// File opens name and scans it, reporting any open error to Stderr
// rather than returning it: a single unreadable file (permissions,
// a broken symlink) should not abort a search over many files.
func (g *Grep) File(name string) {
	f, err := os.Open(name)
	if err != nil {
		fmt.Fprintf(g.Stderr, "%s\n", g.esc(err.Error()))
		return
	}
	defer f.Close()
	g.Reader(f, name)
}

// Reader scans r line by line, confirming each line against g.Regexp
// and writing output per the L/C/N/H/V/HTML/context flags. name is
// used only for the output prefix and error messages.
func (g *Grep) Reader(r io.Reader, name string) {
	prefix := ""
	if !g.H {
		prefix = name + ":"
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		lines   [][]byte // all lines read so far, kept for context windows
		lineno  int
		count   int
		stopped bool
	)
	for !stopped {
		if lineno == len(lines) {
			if !sc.Scan() {
				break
			}
			lines = append(lines, append([]byte(nil), sc.Bytes()...))
		}
		line := lines[lineno]
		lineno++

		loc := g.Regexp.FindIndex(line)
		matched := loc != nil
		if g.V {
			matched = !matched
		}
		if !matched {
			continue
		}

		g.Match = true
		if g.Limit > 0 && g.Matches >= g.Limit {
			g.Limited = true
			stopped = true
			break
		}
		g.Matches++

		if g.L {
			if g.HTML {
				fmt.Fprintf(g.Stdout, "<a href=\"show/%s\">%s</a>\n", g.esc(name), g.esc(name))
			} else {
				fmt.Fprintf(g.Stdout, "%s\n", name)
			}
			return
		}

		switch {
		case g.C:
			count++
		case g.PreContext+g.PostContext > 0:
			idx := lineno - 1
			target := idx + 1 + g.PostContext
			for len(lines) < target && sc.Scan() {
				lines = append(lines, append([]byte(nil), sc.Bytes()...))
			}
			before, match, after := lineWindow(lines, idx, g.PreContext, g.PostContext)
			fmt.Fprintf(g.Stdout, "%s%d:\n", prefix, lineno)
			for _, l := range before {
				fmt.Fprintf(g.Stdout, "\t\t%s\n", l)
			}
			fmt.Fprintf(g.Stdout, "\t>>\t%s\n", match)
			for _, l := range after {
				fmt.Fprintf(g.Stdout, "\t\t%s\n", l)
			}
		case g.HTML:
			fmt.Fprintf(g.Stdout, "<a href=\"/show/%s?q=%s#L%d\">%s:%d</a>:%s\n",
				g.esc(strings.ReplaceAll(name, "#", ">")), g.esc(g.Regexp.String()), lineno, g.esc(name), lineno, g.esc(string(line)))
		case g.N:
			fmt.Fprintf(g.Stdout, "%s%d:%s\n", prefix, lineno, line)
		default:
			fmt.Fprintf(g.Stdout, "%s%s\n", prefix, line)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(g.Stderr, "%s: %v\n", g.esc(name), err)
	}

	if g.C && count > 0 {
		if g.HTML {
			fmt.Fprintf(g.Stdout, "<a href=\"show/%s?q=%s\">%s</a>: %d\n", g.esc(name), g.esc(g.Regexp.String()), g.esc(name), count)
		} else {
			fmt.Fprintf(g.Stdout, "%s: %d\n", name, count)
		}
	}
}

// lineWindow returns the chomped context lines surrounding lines[idx],
// trimmed of a common leading-whitespace prefix the way lineContext
// in the original grep formatter does, so indentation in source code
// doesn't repeat uselessly in every context line.
func lineWindow(lines [][]byte, idx, before, after int) (preLines [][]byte, match []byte, postLines [][]byte) {
	lo := idx - before
	if lo < 0 {
		lo = 0
	}
	hi := idx + after
	if hi >= len(lines) {
		hi = len(lines) - 1
	}

	var prefix []byte
	prefix = updatePrefix(prefix, lines[idx])
	for i := lo; i <= hi; i++ {
		prefix = updatePrefix(prefix, lines[i])
	}

	for i := lo; i < idx; i++ {
		preLines = append(preLines, cutPrefix(chomp(lines[i]), prefix))
	}
	match = cutPrefix(chomp(lines[idx]), prefix)
	for i := idx + 1; i <= hi; i++ {
		postLines = append(postLines, cutPrefix(chomp(lines[i]), prefix))
	}
	return
}

func updatePrefix(prefix, line []byte) []byte {
	if prefix == nil {
		i := 0
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		return line[:i:i]
	}

	i := 0
	for i < len(line) && i < len(prefix) && line[i] == prefix[i] {
		i++
	}
	if i >= len(line) {
		return prefix
	}
	return prefix[:i]
}

func cutPrefix(line, prefix []byte) []byte {
	if len(prefix) > len(line) {
		return nil
	}
	return line[len(prefix):]
}

func chomp(s []byte) []byte {
	i := len(s)
	for i > 0 && (s[i-1] == ' ' || s[i-1] == '\t' || s[i-1] == '\r' || s[i-1] == '\n') {
		i--
	}
	return s[:i]
}
