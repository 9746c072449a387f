package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocFree(t *testing.T) {
	p := NewPool(2)
	assert.True(t, p.Empty())

	h1, ok := p.Alloc()
	require.True(t, ok)
	h2, ok := p.Alloc()
	require.True(t, ok)
	assert.NotEqual(t, h1, h2)

	_, ok = p.Alloc()
	assert.False(t, ok, "pool of capacity 2 should be exhausted")
	assert.False(t, p.Empty())

	p.Free(h1)
	h3, ok := p.Alloc()
	require.True(t, ok)
	assert.Equal(t, h1, h3, "freed handle should be reused")

	p.Free(h3)
	p.Free(h2)
	assert.True(t, p.Empty())
	assert.Equal(t, 3, p.Allocs())
	assert.Equal(t, 3, p.Frees())
}

func TestPoolZeroHandleReserved(t *testing.T) {
	p := NewPool(4)
	for i := 0; i < 4; i++ {
		h, ok := p.Alloc()
		require.True(t, ok)
		assert.NotZero(t, h)
	}
}
