package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLazy_ResolvesOnce(t *testing.T) {
	calls := 0
	l := NewLazy(func() string {
		calls++
		return "string"
	})

	assert.False(t, l.Resolved())
	assert.Equal(t, "string", l.Get())
	assert.Equal(t, "string", l.Get())
	assert.Equal(t, 1, calls)
	assert.True(t, l.Resolved())
}

func TestLazy_ReentrantReturnsZero(t *testing.T) {
	var l *Lazy[int]
	l = NewLazy(func() int {
		return l.Get() + 1
	})
	assert.Equal(t, 1, l.Get())
	assert.Equal(t, 1, l.Get())
}

func TestLazy_NilAndValue(t *testing.T) {
	var l *Lazy[string]
	assert.Equal(t, "", l.Get())
	assert.Equal(t, 42, LazyValue(42).Get())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelError, ParseLogLevel("error"))
	assert.Equal(t, LevelInfo, ParseLogLevel("verbose"))
}
