package regexp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrepDefaultOutputIncludesFileAndLine(t *testing.T) {
	re, err := Compile("wor")
	require.NoError(t, err)

	var out, errs bytes.Buffer
	g := &Grep{Regexp: re, Stdout: &out, Stderr: &errs}
	g.Reader(strings.NewReader("hello world\nnothing here\n"), "f.txt")

	assert.True(t, g.Match)
	assert.Equal(t, 1, g.Matches)
	assert.Contains(t, out.String(), "f.txt:hello world\n")
	assert.Empty(t, errs.String())
}

func TestGrepListModeStopsAtFirstMatch(t *testing.T) {
	re, err := Compile("wor")
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Grep{Regexp: re, Stdout: &out, Stderr: &out, L: true}
	g.Reader(strings.NewReader("world\nworld again\n"), "f.txt")

	assert.Equal(t, "f.txt\n", out.String())
}

func TestGrepCountMode(t *testing.T) {
	re, err := Compile("wor")
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Grep{Regexp: re, Stdout: &out, Stderr: &out, C: true}
	g.Reader(strings.NewReader("world\nhello\nworld again\n"), "f.txt")

	assert.Equal(t, "f.txt: 2\n", out.String())
}

func TestGrepLineNumbers(t *testing.T) {
	re, err := Compile("wor")
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Grep{Regexp: re, Stdout: &out, Stderr: &out, N: true}
	g.Reader(strings.NewReader("hello\nworld\n"), "f.txt")

	assert.Equal(t, "f.txt:2:world\n", out.String())
}

func TestGrepOmitFileName(t *testing.T) {
	re, err := Compile("wor")
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Grep{Regexp: re, Stdout: &out, Stderr: &out, H: true}
	g.Reader(strings.NewReader("world\n"), "f.txt")

	assert.Equal(t, "world\n", out.String())
}

func TestGrepNoMatchProducesNoOutput(t *testing.T) {
	re, err := Compile("xyzzy")
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Grep{Regexp: re, Stdout: &out, Stderr: &out}
	g.Reader(strings.NewReader("hello world\n"), "f.txt")

	assert.False(t, g.Match)
	assert.Empty(t, out.String())
}
