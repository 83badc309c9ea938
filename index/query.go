// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// A QueryOp is the operator in a [Query] tree.
type QueryOp int

const (
	QNone QueryOp = iota // matches no files
	QAll                 // matches all files
	QAnd                 // matches the intersection of Trigram and Sub
	QOr                  // matches the union of Trigram and Sub
)

// A Query is a matter of trigrams that must (QAnd) or may (QOr)
// be present for a file to be a candidate match, built up by the
// regexp analyzer and evaluated against an index by
// [Index.PostingQuery].
//
// Trigram holds literal 3-byte trigrams (sorted, deduplicated);
// Sub holds nested sub-queries. A leaf Query (no Sub) with a single
// Trigram entry is called an atom.
type Query struct {
	Op      QueryOp
	Trigram []string
	Sub     []*Query
}

// QueryAll is the query that matches every file.
var QueryAll = &Query{Op: QAll}

// QueryNone is the query that matches no file.
var QueryNone = &Query{Op: QNone}

func (q *Query) String() string {
	return q.str(nil)
}

func (q *Query) str(buf []byte) string {
	var b bytes.Buffer
	b.Write(buf)
	switch q.Op {
	case QNone:
		b.WriteString("-")
	case QAll:
		b.WriteString("+")
	default:
		sep := ""
		if q.Op == QAnd {
			for _, t := range q.Trigram {
				b.WriteString(sep)
				sep = " "
				fmt.Fprintf(&b, "%q", t)
			}
		} else {
			b.WriteString("(")
			for _, t := range q.Trigram {
				b.WriteString(sep)
				sep = "|"
				fmt.Fprintf(&b, "%q", t)
			}
			sep = "|"
			if len(q.Trigram) == 0 {
				sep = ""
			}
			for _, s := range q.Sub {
				b.WriteString(sep)
				sep = "|"
				b.WriteString(s.String())
			}
			b.WriteString(")")
			return b.String()
		}
		for _, s := range q.Sub {
			b.WriteString(sep)
			sep = " "
			b.WriteString(s.String())
		}
	}
	return b.String()
}

func cleanSet(s []string) []string {
	sort.Strings(s)
	out := s[:0]
	for i, t := range s {
		if i == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

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

func isSubset(s, t []string) bool {
	j := 0
	for _, ss := range s {
		for j < len(t) && t[j] < ss {
			j++
		}
		if j >= len(t) || t[j] != ss {
			return false
		}
	}
	return true
}

// intersectionSplit splits s and t into their common elements and
// each one's unique remainder.
func intersectionSplit(s, t []string) (common, sOnly, tOnly []string) {
	i, j := 0, 0
	for i < len(s) && j < len(t) {
		switch {
		case s[i] < t[j]:
			sOnly = append(sOnly, s[i])
			i++
		case s[i] > t[j]:
			tOnly = append(tOnly, t[j])
			j++
		default:
			common = append(common, s[i])
			i++
			j++
		}
	}
	sOnly = append(sOnly, s[i:]...)
	tOnly = append(tOnly, t[j:]...)
	return
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

// And returns the query matching the intersection of q and r.
func (q *Query) And(r *Query) *Query {
	return q.andOr(r, QAnd)
}

// Or returns the query matching the union of q and r.
func (q *Query) Or(r *Query) *Query {
	return q.andOr(r, QOr)
}

// andOr combines q and r with op, factoring common trigrams and
// collapsing implications along the way so that the resulting tree
// stays small even after many combinations.
func (q *Query) andOr(r *Query, op QueryOp) *Query {
	self := *q
	other := *r

	if len(self.Trigram) == 0 && len(self.Sub) == 1 {
		self = *self.Sub[0]
	}
	if len(other.Trigram) == 0 && len(other.Sub) == 1 {
		other = *other.Sub[0]
	}

	if self.implies(&other) {
		if op == QAnd {
			return &self
		}
		return &other
	}
	if other.implies(&self) {
		if op == QAnd {
			return &other
		}
		return &self
	}

	qAtom := len(self.Trigram) == 1 && len(self.Sub) == 0
	rAtom := len(other.Trigram) == 1 && len(other.Sub) == 0

	if self.Op == op && (other.Op == op || rAtom) {
		self.Trigram = unionSets(self.Trigram, other.Trigram)
		self.Sub = append(append([]*Query{}, self.Sub...), other.Sub...)
		return &self
	}
	if other.Op == op && qAtom {
		other.Trigram = unionSets(other.Trigram, self.Trigram)
		return &other
	}
	if qAtom && rAtom {
		q2 := self
		q2.Op = op
		q2.Trigram = unionSets(self.Trigram, other.Trigram)
		return &q2
	}

	if self.Op == op {
		self.Sub = append(append([]*Query{}, self.Sub...), &other)
		return &self
	}
	if other.Op == op {
		other.Sub = append([]*Query{&self}, other.Sub...)
		return &other
	}

	common, sOnly, tOnly := intersectionSplit(self.Trigram, other.Trigram)
	self.Trigram = sOnly
	other.Trigram = tOnly

	if len(common) > 0 {
		s := self.andOr(&other, op)
		otherOp := QOr
		if op == QOr {
			otherOp = QAnd
		}
		t := &Query{Op: otherOp, Trigram: common}
		return t.andOr(s, otherOp)
	}

	return &Query{Op: op, Sub: []*Query{&self, &other}}
}

// implies reports whether q matching a file guarantees that other
// also matches it.
func (q *Query) implies(other *Query) bool {
	if q.Op == QNone || other.Op == QAll {
		return true
	}
	if q.Op == QAll || other.Op == QNone {
		return false
	}

	if q.Op == QAnd || (q.Op == QOr && len(q.Trigram) == 1 && len(q.Sub) == 0) {
		return trigramsImply(q.Trigram, other)
	}

	if q.Op == QOr && other.Op == QOr &&
		len(q.Trigram) > 0 && len(q.Sub) == 0 &&
		isSubset(q.Trigram, other.Trigram) {
		return true
	}
	return false
}

func trigramsImply(t []string, q *Query) bool {
	switch q.Op {
	case QOr:
		for _, sub := range q.Sub {
			if trigramsImply(t, sub) {
				return true
			}
		}
		for _, tt := range t {
			if isSubset([]string{tt}, q.Trigram) {
				return true
			}
		}
		return false
	case QAnd:
		for _, sub := range q.Sub {
			if !trigramsImply(t, sub) {
				return false
			}
		}
		return isSubset(q.Trigram, t)
	}
	return false
}

// AndTrigrams ANDs q with the disjunction, over every string in t
// (each at least 3 bytes long), of the conjunction of its trigrams.
// It is how regexpInfo (package regexp) folds a set of required substrings into the
// accumulating match query.
func (q *Query) AndTrigrams(t []string) *Query {
	if minLen(t) < 3 {
		return q
	}
	orQ := QueryNone
	for _, tt := range t {
		var trig []string
		for i := 0; i+3 <= len(tt); i++ {
			trig = append(trig, tt[i:i+3])
		}
		trig = cleanSet(trig)
		orQ = orQ.Or(&Query{Op: QAnd, Trigram: trig})
	}
	return q.And(orQ)
}

func quoteTrigrams(trig []string) string {
	var b strings.Builder
	for i, t := range trig {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%q", t)
	}
	return b.String()
}
