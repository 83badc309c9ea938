// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

// A postEntry is an in-memory (trigram, file#) pair, packed into a
// single uint64 so that a plain numeric sort orders first by trigram
// and then by file ID.
type postEntry uint64

// invalidTrigram is used as a past-the-end sentinel trigram value by
// the merge heap; it never occurs in indexed data, since the byte 0xFF
// makes a file invalid UTF-8 and Add skips such files.
const invalidTrigram = uint32(1<<24 - 1)

func (p postEntry) trigram() uint32 {
	return uint32(p >> 40)
}

func (p postEntry) fileid() int {
	return int(uint64(p << 24 >> 24))
}

func makePostEntry(trigram uint32, fileid int) postEntry {
	return postEntry(trigram)<<40 | postEntry(fileid)
}

// postBlockSize is the size, in bytes, of each packed block of the
// on-disk posting-list index; see the format notes atop read.go.
const postBlockSize = 256

// A postDataWriter appends posting lists (trigram + γ-coded file-ID
// deltas) to out, and, when index is non-nil, also builds the
// corresponding posting-list index: 256-byte blocks of
// (trigram[3], varint count, varint offset-delta) entries, padded
// with zero bytes so no entry straddles a block boundary and each
// block's offsets are delta-coded from a zero base.
type postDataWriter struct {
	out   *Buffer
	index *Buffer

	base      int // out.Offset() when this writer was created
	blockBase int // absolute offset baseline for index delta-coding

	offset int // start offset of the current trigram's posting list
	count  int
	last   int
	t      uint32
	delta  deltaWriter

	numTrigram int
}

func (w *postDataWriter) init(out, index *Buffer) {
	w.out = out
	w.index = index
	w.base = out.Offset()
	w.blockBase = 0
	w.delta.init(out)
}

// trigram begins a new posting list for t.
func (w *postDataWriter) trigram(t uint32) {
	w.offset = w.out.Offset()
	w.count = 0
	w.t = t
	w.last = -1
}

// fileid appends id to the posting list begun by the last call to trigram.
func (w *postDataWriter) fileid(id int) {
	if w.count == 0 {
		w.out.WriteTrigram(w.t)
	}
	w.delta.write(id - w.last)
	w.last = id
	w.count++
}

// endTrigram finishes the posting list begun by the last call to
// trigram, writing the terminating zero delta and, if recording an
// index, the corresponding index entry.
func (w *postDataWriter) endTrigram() {
	if w.count == 0 {
		return
	}
	w.delta.write(0)
	w.delta.flush()
	w.numTrigram++
	if w.index != nil {
		w.writeIndexEntry(w.t, w.count, w.offset-w.base)
	}
}

func uvarintLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

func (w *postDataWriter) writeIndexEntry(t uint32, count, absOffset int) {
	delta := absOffset - w.blockBase
	size := 3 + uvarintLen(uint64(count)) + uvarintLen(uint64(delta))
	pos := w.index.Offset() % postBlockSize
	if pos != 0 && pos+size > postBlockSize {
		for pos < postBlockSize {
			w.index.WriteByte(0)
			pos++
		}
		pos = 0
	}
	if pos == 0 {
		w.blockBase = 0
		delta = absOffset
	}
	w.index.WriteTrigram(t)
	w.index.WriteVarint(count)
	w.index.WriteVarint(delta)
	w.blockBase = absOffset
}

// flush pads the posting-list index out to a whole number of blocks,
// matching the zero-padded-to-multiple-of-postBlockSize on-disk
// convention.
func (w *postDataWriter) flush() {
	if w.index == nil {
		return
	}
	for w.index.Offset()%postBlockSize != 0 {
		w.index.WriteByte(0)
	}
}

// A postChunk is one source of sorted postEntry values being merged:
// either the remaining in-memory buffer or a spilled scratch file
// being read back through an allPostReader.
type postChunk struct {
	e    postEntry
	next func() (postEntry, bool)
}

// A postHeap is a heap (priority queue) of postChunks, used both to
// merge spilled scratch chunks with the in-memory tail during a
// build, and to merge two whole indexes together.
type postHeap struct {
	ch []*postChunk
}

func (h *postHeap) addMem(x []postEntry) {
	h.add(func() (postEntry, bool) {
		if len(x) == 0 {
			return 0, false
		}
		e := x[0]
		x = x[1:]
		return e, true
	})
}

// addFile adds the spilled chunks stored back-to-back in f, whose
// byte boundaries are given by ends (a cumulative end offset per
// chunk), each encoded in postDataWriter format.
func (h *postHeap) addFile(f *mmapData, ends []int) {
	start := 0
	for _, end := range ends {
		var r allPostReader
		r.init(f.d[start:end])
		h.add(r.next)
		start = end
	}
}

// add adds a chunk to the heap. All adds must happen before the
// first call to next.
func (h *postHeap) add(next func() (postEntry, bool)) {
	e, ok := next()
	if !ok {
		return
	}
	h.push(&postChunk{e, next})
}

// empty reports whether the heap has been drained.
func (h *postHeap) empty() bool {
	return len(h.ch) == 0
}

// next returns the smallest remaining entry, or a postEntry with
// trigram == invalidTrigram once the heap is drained.
func (h *postHeap) next() postEntry {
	if len(h.ch) == 0 {
		return makePostEntry(invalidTrigram, 0)
	}
	ch := h.ch[0]
	e := ch.e
	e1, ok := ch.next()
	if !ok {
		h.pop()
	} else {
		ch.e = e1
		h.siftDown(0)
	}
	return e
}

func (h *postHeap) pop() *postChunk {
	ch := h.ch[0]
	n := len(h.ch) - 1
	h.ch[0] = h.ch[n]
	h.ch = h.ch[:n]
	if n > 1 {
		h.siftDown(0)
	}
	return ch
}

func (h *postHeap) push(ch *postChunk) {
	n := len(h.ch)
	h.ch = append(h.ch, ch)
	if len(h.ch) >= 2 {
		h.siftUp(n)
	}
}

func (h *postHeap) siftDown(i int) {
	ch := h.ch
	for {
		j1 := 2*i + 1
		if j1 >= len(ch) {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < len(ch) && ch[j1].e >= ch[j2].e {
			j = j2
		}
		if ch[i].e < ch[j].e {
			break
		}
		ch[i], ch[j] = ch[j], ch[i]
		i = j
	}
}

func (h *postHeap) siftUp(j int) {
	ch := h.ch
	for {
		i := (j - 1) / 2
		if i == j || ch[i].e < ch[j].e {
			break
		}
		ch[i], ch[j] = ch[j], ch[i]
		j = i
	}
}

// allPostReader decodes every (trigram, fileid) pair out of a run of
// postDataWriter-formatted bytes, in order. It is used to read back a
// spilled scratch chunk during the merge phase of a build, and the
// posts section of an index during Merge. It stops at the end of the
// data or at a zero trigram, which marks the zero padding that follows
// the posting lists in an index file.
type allPostReader struct {
	trigram uint32
	fileid  int
	delta   deltaReader
}

func (r *allPostReader) init(data []byte) {
	r.delta.init(&Index{name: "<scratch>"}, data)
	r.trigram = invalidTrigram
}

func (r *allPostReader) next() (postEntry, bool) {
	for {
		if r.trigram == invalidTrigram {
			d := r.delta.d
			if len(d) < 3 || (d[0]|d[1]|d[2]) == 0 {
				return 0, false
			}
			r.trigram = uint32(d[0])<<16 | uint32(d[1])<<8 | uint32(d[2])
			r.delta.d = d[3:]
			r.fileid = -1
		}
		delta := r.delta.next()
		if delta == 0 {
			r.delta.clearBits()
			r.trigram = invalidTrigram
			continue
		}
		r.fileid += delta
		return makePostEntry(r.trigram, r.fileid), true
	}
}

// sortPost sorts post by trigram (top 24 bits) and then by file ID
// (bottom 40 bits), using a two-pass 12-bit radix sort since the
// entries mostly arrive already close to sorted by file ID.
const sortK = 12

var sortTmp []postEntry
var sortN [1 << sortK]int

func sortPost(post []postEntry) {
	if len(post) == 0 {
		return
	}
	if len(post) > len(sortTmp) {
		sortTmp = make([]postEntry, len(post))
	}
	tmp := sortTmp[:len(post)]

	const k = sortK
	for i := range sortN {
		sortN[i] = 0
	}
	for _, p := range post {
		r := uintptr(p>>40) & (1<<k - 1)
		sortN[r]++
	}
	tot := 0
	for i, count := range sortN {
		sortN[i] = tot
		tot += count
	}
	for _, p := range post {
		r := uintptr(p>>40) & (1<<k - 1)
		o := sortN[r]
		sortN[r]++
		tmp[o] = p
	}
	copy(post, tmp)

	for i := range sortN {
		sortN[i] = 0
	}
	for _, p := range post {
		r := uintptr(p>>(40+k)) & (1<<k - 1)
		sortN[r]++
	}
	tot = 0
	for i, count := range sortN {
		sortN[i] = tot
		tot += count
	}
	for _, p := range post {
		r := uintptr(p>>(40+k)) & (1<<k - 1)
		o := sortN[r]
		sortN[r]++
		tmp[o] = p
	}
	copy(post, tmp)
}
