package tantivy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-wolfe/tantivy/stacker"
)

func TestNewIndexWriter_Validation(t *testing.T) {
	t.Run("budget too small", func(t *testing.T) {
		_, err := NewIndexWriter(WithMemoryBudget(10))
		assert.ErrorIs(t, err, stacker.ErrBudgetTooSmall)
	})

	t.Run("invalid worker count", func(t *testing.T) {
		_, err := NewIndexWriter(WithNumWorkers(0))
		assert.ErrorIs(t, err, ErrInvalidNumWorkers)
	})
}

func TestIndexWriter_SingleWorker(t *testing.T) {
	ctx := context.Background()

	w, err := NewIndexWriter()
	require.NoError(t, err)

	docs := []string{
		"The quick brown fox",
		"the lazy DOG",
		"the quick dog dog",
	}
	for i, text := range docs {
		id, err := w.AddDocument(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
	}

	segments, err := w.Commit(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, uint32(3), seg.DocCount())
	require.Equal(t, 6, seg.NumTerms())

	// Tokens are lowercased; terms appear in first-insertion order.
	var order []string
	for _, info := range seg.Terms() {
		order = append(order, string(info.Term))
	}
	assert.Equal(t, []string{"the", "quick", "brown", "fox", "lazy", "dog"}, order)

	dict := seg.Dictionary()
	assert.Equal(t, "brown", string(dict[0].Term))
	assert.Equal(t, "the", string(dict[len(dict)-1].Term))

	for _, info := range seg.Terms() {
		if string(info.Term) == "dog" {
			assert.Equal(t, uint32(2), info.DocFreq)
			assert.ElementsMatch(t, []uint32{1, 2}, info.Docs.ToArray())
		}
	}
}

func TestIndexWriter_FlushesOnSaturation(t *testing.T) {
	ctx := context.Background()

	// A tiny budget forces several flushes for a modest term count.
	w, err := NewIndexWriter(WithMemoryBudget(2_000))
	require.NoError(t, err)

	const numDocs = 20
	for i := 0; i < numDocs; i++ {
		_, err := w.AddDocument(ctx, fmt.Sprintf("alpha%d beta%d gamma%d", i, i, i))
		require.NoError(t, err)
	}

	segments, err := w.Commit(ctx)
	require.NoError(t, err)
	require.Greater(t, len(segments), 1, "tiny budget must produce multiple segments")

	var docTotal uint32
	distinct := make(map[string]struct{})
	for _, seg := range segments {
		docTotal += seg.DocCount()
		for _, info := range seg.Terms() {
			distinct[string(info.Term)] = struct{}{}
		}
	}
	assert.Equal(t, uint32(numDocs), docTotal)
	assert.Len(t, distinct, 3*numDocs)
}

func TestIndexWriter_MultipleWorkers(t *testing.T) {
	ctx := context.Background()

	w, err := NewIndexWriter(WithNumWorkers(4), WithMemoryBudget(100_000))
	require.NoError(t, err)

	const numDocs = 200
	for i := 0; i < numDocs; i++ {
		_, err := w.AddDocument(ctx, fmt.Sprintf("common word%d", i%10))
		require.NoError(t, err)
	}

	segments, err := w.Commit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	// Every document lands in exactly one segment.
	seen := make(map[uint32]struct{})
	var docTotal uint32
	for _, seg := range segments {
		docTotal += seg.DocCount()
		for _, info := range seg.Terms() {
			if string(info.Term) == "common" {
				for _, doc := range info.Docs.ToArray() {
					_, dup := seen[doc]
					require.False(t, dup, "doc %d in more than one segment", doc)
					seen[doc] = struct{}{}
				}
			}
		}
	}
	assert.Equal(t, uint32(numDocs), docTotal)
	assert.Len(t, seen, numDocs)
}

func TestIndexWriter_ClosedAfterCommit(t *testing.T) {
	ctx := context.Background()

	w, err := NewIndexWriter()
	require.NoError(t, err)

	_, err = w.AddDocument(ctx, "some text")
	require.NoError(t, err)

	_, err = w.Commit(ctx)
	require.NoError(t, err)

	_, err = w.AddDocument(ctx, "too late")
	assert.ErrorIs(t, err, ErrWriterClosed)

	_, err = w.Commit(ctx)
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestIndexWriter_ConcurrentAddAndCommit(t *testing.T) {
	ctx := context.Background()

	w, err := NewIndexWriter(WithNumWorkers(2), WithMemoryBudget(100_000))
	require.NoError(t, err)

	// Producers race Commit: each add must either be fully accepted or fail
	// with ErrWriterClosed. A send hitting a closed channel would panic.
	var accepted atomic.Uint32
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if _, err := w.AddDocument(ctx, "alpha beta gamma"); err != nil {
					assert.ErrorIs(t, err, ErrWriterClosed)
					return
				}
				accepted.Add(1)
			}
		}()
	}

	time.Sleep(2 * time.Millisecond)
	segments, err := w.Commit(ctx)
	require.NoError(t, err)
	wg.Wait()

	var docTotal uint32
	for _, seg := range segments {
		docTotal += seg.DocCount()
	}
	assert.Equal(t, accepted.Load(), docTotal)
}

func TestIndexWriter_CountsDocumentsWithoutTokens(t *testing.T) {
	ctx := context.Background()

	w, err := NewIndexWriter()
	require.NoError(t, err)

	_, err = w.AddDocument(ctx, "first document")
	require.NoError(t, err)
	_, err = w.AddDocument(ctx, "   \t  ")
	require.NoError(t, err)
	_, err = w.AddDocument(ctx, "last document")
	require.NoError(t, err)

	segments, err := w.Commit(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, uint32(3), segments[0].DocCount())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("hello"), []byte("world")}, tokenize("  Hello \t WORLD\n"))
	assert.Empty(t, tokenize("   "))
}
