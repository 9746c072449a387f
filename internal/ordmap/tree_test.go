package ordmap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSearch(t *testing.T) {
	var tr Tree
	n, ok := tr.Insert(10, "a")
	require.True(t, ok)
	require.NotNil(t, n)

	_, ok = tr.Insert(10, "b")
	assert.False(t, ok, "duplicate key must be rejected")

	got := tr.Search(10)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Item)

	assert.Nil(t, tr.Search(11))
}

func TestHeadNextOrdering(t *testing.T) {
	var tr Tree
	keys := []uint32{50, 20, 70, 10, 30, 60, 80, 5, 15}
	for _, k := range keys {
		_, ok := tr.Insert(k, k)
		require.True(t, ok)
	}
	var got []uint32
	for n := tr.Head(); n != nil; n = n.Next() {
		got = append(got, n.Key())
	}
	want := append([]uint32(nil), keys...)
	sortUint32(want)
	assert.Equal(t, want, got)

	// Prev from the tail should walk back in reverse.
	tail := got[len(got)-1]
	tailNode := tr.Search(tail)
	var back []uint32
	for n := tailNode; n != nil; n = n.Prev() {
		back = append(back, n.Key())
	}
	reverse(back)
	assert.Equal(t, want, back)
}

func TestUnlink(t *testing.T) {
	var tr Tree
	keys := []uint32{50, 20, 70, 10, 30, 60, 80}
	nodes := map[uint32]*Node{}
	for _, k := range keys {
		n, _ := tr.Insert(k, nil)
		nodes[k] = n
	}
	tr.Unlink(nodes[20])
	tr.Unlink(nodes[70])

	var got []uint32
	for n := tr.Head(); n != nil; n = n.Next() {
		got = append(got, n.Key())
	}
	assert.Equal(t, []uint32{10, 30, 50, 60, 80}, got)
	assert.Equal(t, 5, tr.Len())
	assert.Nil(t, tr.Search(20))
	assert.Nil(t, tr.Search(70))
}

func TestRandomizedInsertUnlinkStaysOrdered(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var tr Tree
	live := map[uint32]bool{}
	for i := 0; i < 2000; i++ {
		k := uint32(r.Intn(500))
		if live[k] {
			continue
		}
		tr.Insert(k, nil)
		live[k] = true
		if r.Intn(3) == 0 {
			// unlink some arbitrary live key
			for kk := range live {
				tr.Unlink(tr.Search(kk))
				delete(live, kk)
				break
			}
		}
	}
	var prev uint32
	first := true
	count := 0
	for n := tr.Head(); n != nil; n = n.Next() {
		if !first {
			assert.True(t, n.Key() > prev)
		}
		prev = n.Key()
		first = false
		count++
	}
	assert.Equal(t, len(live), count)
	assert.Equal(t, len(live), tr.Len())
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func reverse(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
