// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regexp

import (
	"regexp/syntax"
	"sort"
	"strings"
	"unicode"

	"github.com/hugeproblem/codesearch/index"
)

// maxExact bounds how many exact-match alternatives info.exact is
// allowed to hold before it gets folded down into prefix/suffix
// trigram sets; maxSet bounds how large those prefix/suffix sets may
// grow before they get shortened; maxFoldExpand bounds the cross
// product of per-rune case variants built for a case-insensitive
// literal before giving up and falling back to no constraint.
const (
	maxExact      = 7
	maxSet        = 20
	maxFoldExpand = 100
)

// regexpInfo summarizes what is known about the strings a
// sub-expression can match, enough to build a trigram query that
// every match is guaranteed to satisfy.
//
//   - exact, when non-nil, lists every string the sub-expression can
//     match exactly.
//   - prefix and suffix list possible prefixes/suffixes when exact
//     is too large (or unknown) to track.
//   - match is the trigram query accumulated so far.
type regexpInfo struct {
	canEmpty bool
	exact    []string // nil means "unknown", distinct from empty-but-non-nil
	hasExact bool
	prefix   []string
	suffix   []string
	match    *index.Query
}

func newInfo() regexpInfo {
	return regexpInfo{match: index.QueryAll}
}

func anyMatch() regexpInfo {
	return regexpInfo{canEmpty: true, prefix: []string{""}, suffix: []string{""}, match: index.QueryAll}
}

func anyChar() regexpInfo {
	return regexpInfo{prefix: []string{""}, suffix: []string{""}, match: index.QueryAll}
}

func noMatch() regexpInfo {
	return regexpInfo{match: index.QueryNone}
}

func emptyString() regexpInfo {
	return regexpInfo{canEmpty: true, exact: []string{""}, hasExact: true, match: index.QueryAll}
}

func (r *regexpInfo) setExact(s []string) {
	r.exact = s
	r.hasExact = true
}

func (r *regexpInfo) clearExact() {
	r.exact = nil
	r.hasExact = false
}

// addExact folds any exact match set that survived simplification
// into the accumulated query; called at the top level, and by
// alternateInfo on the exact side of a mixed alternation.
func (r *regexpInfo) addExact() {
	if r.hasExact {
		r.match = r.match.AndTrigrams(r.exact)
	}
}

func (r *regexpInfo) simplify(force bool) {
	if r.hasExact {
		exact := cleanSet(append([]string{}, r.exact...))
		if len(exact) > maxExact || (minLen(exact) >= 3 && force) || minLen(exact) >= 4 {
			r.match = r.match.AndTrigrams(exact)
			for _, s := range exact {
				if len(s) < 3 {
					r.prefix = append(r.prefix, s)
					r.suffix = append(r.suffix, s)
				} else {
					r.prefix = append(r.prefix, s[:2])
					r.suffix = append(r.suffix, s[len(s)-2:])
				}
			}
			r.clearExact()
		} else {
			r.setExact(exact)
		}
	}

	if !r.hasExact {
		simplifySet(&r.prefix, false)
		simplifySet(&r.suffix, true)
		r.match = r.match.AndTrigrams(r.prefix)
		r.match = r.match.AndTrigrams(r.suffix)
	}
}

// simplifySet shortens s until it has at most maxSet members, each
// truncated to at most 3 bytes (from the front, or from the back for
// a suffix set), then drops entries implied by a shorter one already
// kept.
func simplifySet(s *[]string, isSuffix bool) {
	cleanSetPtr(s)

	set := *s
	for n := 3; n == 3 || len(set) > maxSet; n-- {
		if n == 0 {
			break
		}
		next := make([]string, len(set))
		for i, str := range set {
			if len(str) >= n {
				if !isSuffix {
					str = str[:n]
				} else {
					str = str[len(str)-n:]
				}
			}
			next[i] = str
		}
		set = cleanSet(next)
	}

	if isSuffix {
		sort.Slice(set, func(i, j int) bool {
			return reverse(set[i]) < reverse(set[j])
		})
	} else {
		sort.Strings(set)
	}

	out := set[:0:0]
	for _, str := range set {
		if len(out) == 0 {
			out = append(out, str)
			continue
		}
		prev := out[len(out)-1]
		redundant := false
		if isSuffix {
			redundant = strings.HasSuffix(str, prev)
		} else {
			redundant = strings.HasPrefix(str, prev)
		}
		if !redundant {
			out = append(out, str)
		}
	}
	*s = out
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func cleanSet(s []string) []string {
	s = append([]string{}, s...)
	sort.Strings(s)
	out := s[:0]
	for i, t := range s {
		if i == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

func cleanSetPtr(s *[]string) { *s = cleanSet(*s) }

func unionSets(s, t []string) []string {
	return cleanSet(append(append([]string{}, s...), t...))
}

func crossSets(s, t []string) []string {
	var p []string
	for _, ss := range s {
		for _, tt := range t {
			p = append(p, ss+tt)
		}
	}
	return cleanSet(p)
}

// foldRune returns r and every rune that case-folds to the same
// equivalence class as r (Go's simple case folding orbit), sorted.
func foldRune(r rune) []rune {
	variants := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		variants = append(variants, f)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i] < variants[j] })
	return variants
}

// foldedExact expands a fold-case literal's runes into the exact set
// of every case-variant string it can match: the cross product of each
// rune's fold orbit. It reports ok=false if that cross product would
// grow past maxFoldExpand, in which case the caller should fall back
// to an unconstrained match instead.
func foldedExact(runes []rune) (exact []string, ok bool) {
	exact = []string{""}
	for _, r := range runes {
		variants := foldRune(r)
		if len(exact)*len(variants) > maxFoldExpand {
			return nil, false
		}
		next := make([]string, 0, len(exact)*len(variants))
		for _, prefix := range exact {
			for _, v := range variants {
				next = append(next, prefix+string(v))
			}
		}
		exact = next
	}
	return cleanSet(exact), true
}

func minLen(s []string) int {
	if len(s) == 0 {
		return 0
	}
	m := len(s[0])
	for _, x := range s[1:] {
		if len(x) < m {
			m = len(x)
		}
	}
	return m
}

// AnalyzeRegexp parses pattern and returns the trigram query that
// every file matching it must satisfy. The query is a necessary, not
// sufficient, condition: callers still need to run the regexp itself
// over candidate files to confirm a match.
func AnalyzeRegexp(pattern string) (*index.Query, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, err
	}
	info := analyzeRegexp(re)
	info.simplify(true)
	info.addExact()
	return info.match, nil
}

func analyzeRegexp(re *syntax.Regexp) regexpInfo {
	var info regexpInfo
	switch re.Op {
	case syntax.OpNoMatch:
		info = noMatch()

	case syntax.OpEmptyMatch:
		info = emptyString()

	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			exact, ok := foldedExact(re.Rune)
			if !ok {
				info = anyChar()
				break
			}
			info = newInfo()
			info.setExact(exact)
			break
		}
		info = newInfo()
		info.setExact([]string{string(re.Rune)})

	case syntax.OpCharClass:
		info = newInfo()
		var chars []rune
		tooMany := false
		for i := 0; i+1 < len(re.Rune); i += 2 {
			lo, hi := re.Rune[i], re.Rune[i+1]
			if len(chars)+int(hi-lo+1) > 100 {
				tooMany = true
				break
			}
			for c := lo; c <= hi; c++ {
				chars = append(chars, c)
			}
		}
		if tooMany {
			info = anyChar()
			break
		}
		if len(chars) == 0 {
			info = noMatch()
			break
		}
		exact := make([]string, len(chars))
		for i, c := range chars {
			exact[i] = string(c)
		}
		info.setExact(exact)

	case syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		info = anyChar()

	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		info = emptyString()

	case syntax.OpCapture:
		info = analyzeRegexp(re.Sub[0])

	case syntax.OpStar, syntax.OpQuest:
		info = anyMatch()

	case syntax.OpPlus:
		info = plusInfo(re.Sub[0])

	case syntax.OpRepeat:
		if re.Min == 0 {
			info = anyMatch()
		} else {
			info = plusInfo(re.Sub[0])
		}

	case syntax.OpConcat:
		info = foldInfo(concatInfo, re.Sub, emptyString())

	case syntax.OpAlternate:
		info = foldInfo(alternateInfo, re.Sub, noMatch())

	default:
		info = anyChar()
	}
	info.simplify(false)
	return info
}

// plusInfo analyzes a sub-expression required to match at least once:
// whatever it matches exactly becomes a required prefix and suffix
// rather than a required exact match, since the expression as a whole
// may repeat it any number of additional times.
func plusInfo(sub *syntax.Regexp) regexpInfo {
	info := analyzeRegexp(sub)
	if info.hasExact {
		info.prefix = info.exact
		info.suffix = info.exact
		info.clearExact()
	}
	return info
}

func foldInfo(f func(x, y regexpInfo) regexpInfo, subs []*syntax.Regexp, zero regexpInfo) regexpInfo {
	if len(subs) == 0 {
		return zero
	}
	if len(subs) == 1 {
		return analyzeRegexp(subs[0])
	}
	info := f(analyzeRegexp(subs[0]), analyzeRegexp(subs[1]))
	for _, sub := range subs[2:] {
		info = f(info, analyzeRegexp(sub))
	}
	return info
}

func concatInfo(x, y regexpInfo) regexpInfo {
	xy := newInfo()
	xy.match = x.match.And(y.match)

	if x.hasExact && y.hasExact {
		xy.setExact(crossSets(x.exact, y.exact))
	} else {
		if x.hasExact {
			xy.prefix = crossSets(x.exact, y.prefix)
		} else {
			xy.prefix = x.prefix
			if x.canEmpty {
				xy.prefix = unionSets(xy.prefix, y.prefix)
			}
		}

		if y.hasExact {
			xy.suffix = crossSets(x.suffix, y.exact)
		} else {
			xy.suffix = y.suffix
			if y.canEmpty {
				xy.suffix = unionSets(xy.suffix, x.suffix)
			}
		}
	}

	xy.canEmpty = x.canEmpty && y.canEmpty

	if !x.hasExact && !y.hasExact &&
		len(x.suffix) <= maxSet && len(y.prefix) <= maxSet &&
		minLen(x.suffix)+minLen(y.prefix) >= 3 {
		xy.match = xy.match.AndTrigrams(crossSets(x.suffix, y.prefix))
	}

	xy.simplify(false)
	return xy
}

func alternateInfo(x, y regexpInfo) regexpInfo {
	xy := newInfo()

	switch {
	case x.hasExact && y.hasExact:
		xy.setExact(unionSets(x.exact, y.exact))
	case x.hasExact:
		xy.prefix = unionSets(x.exact, y.prefix)
		xy.suffix = unionSets(x.exact, y.suffix)
		x.addExact()
	case y.hasExact:
		xy.prefix = unionSets(x.prefix, y.exact)
		xy.suffix = unionSets(x.suffix, y.exact)
		y.addExact()
	default:
		xy.prefix = unionSets(x.prefix, y.prefix)
		xy.suffix = unionSets(x.suffix, y.suffix)
	}

	xy.canEmpty = x.canEmpty || y.canEmpty
	xy.match = x.match.Or(y.match)

	xy.simplify(false)
	return xy
}
