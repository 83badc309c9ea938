// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaRoundTrip(t *testing.T) {
	values := []int{1, 2, 3, 0, 15, 16, 17, 1000, 1 << 20, 0}

	data, err := bufCreate("")
	require.NoError(t, err)

	var w deltaWriter
	w.init(data)
	for _, v := range values {
		w.write(v)
	}
	w.flush()

	f, err := data.finish()
	require.NoError(t, err)
	st, err := f.Stat()
	require.NoError(t, err)
	buf := make([]byte, st.Size())
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)

	ix := &Index{name: "<test>"}
	var r deltaReader
	r.init(ix, buf)
	for _, want := range values {
		got := r.next()
		assert.Equal(t, want, got)
	}
	assert.Nil(t, ix.Err())
}

func TestDeltaCorruptStreamReportsError(t *testing.T) {
	ix := &Index{name: "<test>"}
	var r deltaReader
	r.init(ix, nil)
	got := r.next()
	assert.Equal(t, -1, got)
	assert.NotNil(t, ix.Err())
}
