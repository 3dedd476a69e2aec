package stacker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(h *Heap, l *ExpUnrolledLinkedList) []uint32 {
	out := make([]uint32, 0, l.Len())
	for v := range l.All(h) {
		out = append(out, v)
	}
	return out
}

func TestExpUnrolledLinkedList_Empty(t *testing.T) {
	h := NewHeap(1024)
	_, l := AllocValue[ExpUnrolledLinkedList](h)

	assert.Equal(t, 0, l.Len())
	assert.Empty(t, collect(h, l))
}

func TestExpUnrolledLinkedList_SingleBlock(t *testing.T) {
	h := NewHeap(1024)
	_, l := AllocValue[ExpUnrolledLinkedList](h)

	for i := uint32(0); i < 5; i++ {
		l.Push(h, i*7)
	}

	assert.Equal(t, []uint32{0, 7, 14, 21, 28}, collect(h, l))
}

func TestExpUnrolledLinkedList_CrossesBlocks(t *testing.T) {
	// 5000 values span the full exponential schedule (8, 16, ... 1024) plus
	// several max-size blocks.
	h := NewHeap(1 << 20)
	_, l := AllocValue[ExpUnrolledLinkedList](h)

	const n = 5000
	for i := uint32(0); i < n; i++ {
		l.Push(h, i)
	}
	require.Equal(t, n, l.Len())

	got := collect(h, l)
	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, uint32(i), v)
	}
}

func TestExpUnrolledLinkedList_Interleaved(t *testing.T) {
	// Two lists growing in the same heap must not corrupt each other even
	// though their blocks interleave.
	h := NewHeap(1 << 20)
	_, a := AllocValue[ExpUnrolledLinkedList](h)
	_, b := AllocValue[ExpUnrolledLinkedList](h)

	for i := uint32(0); i < 200; i++ {
		a.Push(h, i)
		b.Push(h, 1000+i)
	}

	gotA := collect(h, a)
	gotB := collect(h, b)
	require.Len(t, gotA, 200)
	require.Len(t, gotB, 200)
	for i := uint32(0); i < 200; i++ {
		assert.Equal(t, i, gotA[i])
		assert.Equal(t, 1000+i, gotB[i])
	}
}
