package postings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-wolfe/tantivy/stacker"
)

func collectPairs(h *stacker.Heap, p *TermPostings) []Posting {
	var out []Posting
	for doc, tf := range p.All(h) {
		out = append(out, Posting{DocID: doc, TermFreq: tf})
	}
	return out
}

func TestTermPostings_SingleDoc(t *testing.T) {
	h := stacker.NewHeap(1 << 16)
	addr, p := stacker.AllocValue[TermPostings](h)

	assert.Equal(t, addr, p.Addr())

	p.Record(h, 7)
	p.Record(h, 7)
	p.Record(h, 7)

	assert.Equal(t, uint32(1), p.DocFreq())
	assert.Equal(t, []Posting{{DocID: 7, TermFreq: 3}}, collectPairs(h, p))
}

func TestTermPostings_MultipleDocs(t *testing.T) {
	h := stacker.NewHeap(1 << 16)
	_, p := stacker.AllocValue[TermPostings](h)

	p.Record(h, 1)
	p.Record(h, 1)
	p.Record(h, 4)
	p.Record(h, 9)
	p.Record(h, 9)
	p.Record(h, 9)

	assert.Equal(t, uint32(3), p.DocFreq())
	assert.Equal(t, []Posting{
		{DocID: 1, TermFreq: 2},
		{DocID: 4, TermFreq: 1},
		{DocID: 9, TermFreq: 3},
	}, collectPairs(h, p))
}

func TestTermPostings_DocZero(t *testing.T) {
	// Doc id 0 must be recorded like any other document.
	h := stacker.NewHeap(1 << 16)
	_, p := stacker.AllocValue[TermPostings](h)

	p.Record(h, 0)

	require.Equal(t, []Posting{{DocID: 0, TermFreq: 1}}, collectPairs(h, p))
}

func TestTermPostings_Empty(t *testing.T) {
	h := stacker.NewHeap(1 << 16)
	_, p := stacker.AllocValue[TermPostings](h)

	assert.Equal(t, uint32(0), p.DocFreq())
	assert.Empty(t, collectPairs(h, p))
}
