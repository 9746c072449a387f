package bkpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	a := []Pos{0, 2, 4, 10}
	assert.Equal(t, 0, Search(a, 0))
	assert.Equal(t, 1, Search(a, 1))
	assert.Equal(t, 1, Search(a, 2))
	assert.Equal(t, 3, Search(a, 5))
	assert.Equal(t, 4, Search(a, 11))
}

func TestCursorAdvanceMatchesSearch(t *testing.T) {
	a := []Pos{0, 2, 4, 10, 15, 15, 20}
	c := NewCursor(a)
	for _, x := range []Pos{0, 0, 1, 2, 3, 10, 10, 16, 20, 21} {
		got := c.Advance(x)
		want := Search(a, x)
		assert.Equal(t, want, got, "x=%d", x)
	}
}
