package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSkip(t *testing.T) {
	assert.True(t, DefaultSkip("/a/.git"))
	assert.True(t, DefaultSkip("/a/#scratch#"))
	assert.True(t, DefaultSkip("/a/backup~"))
	assert.False(t, DefaultSkip("/a/main.go"))
}

func TestMatchExtensions(t *testing.T) {
	assert.True(t, MatchExtensions("/a/b/main.go", nil))
	assert.True(t, MatchExtensions("/a/b/main.go", []string{"go"}))
	assert.True(t, MatchExtensions("/a/b/main.go", []string{"rs", ".go"}))
	assert.False(t, MatchExtensions("/a/b/main.go", []string{"rs"}))
	assert.False(t, MatchExtensions("/a/b/README", []string{"go"}))
}
