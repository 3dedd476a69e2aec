package postings

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/jason-wolfe/tantivy/stacker"
)

// Writer accumulates the postings of one in-progress segment. It owns a
// (heap, term table) pair sized from a per-worker memory budget and routes
// every token through the table's get-or-create path.
//
// A Writer is single-use: after Flush it is exhausted and a new Writer
// starts the next segment. It is not safe for concurrent use; one Writer per
// indexing worker.
type Writer struct {
	heap       *stacker.Heap
	terms      *stacker.TermHashMap[TermPostings, *TermPostings]
	docCount   uint32
	currentDoc uint32
	flushed    bool
}

// NewWriter creates a writer whose heap and table split the given memory
// budget (bytes). Fails with stacker.ErrBudgetTooSmall when the budget
// cannot fit a table.
func NewWriter(memoryBudget int) (*Writer, error) {
	heapBytes, tableBits, err := stacker.SplitMemory(memoryBudget)
	if err != nil {
		return nil, err
	}
	heap := stacker.NewHeap(heapBytes)
	return &Writer{
		heap:       heap,
		terms:      stacker.NewTermHashMap[TermPostings](tableBits, heap),
		currentDoc: noDoc,
	}, nil
}

// AddDocument records all tokens of one document. A document with no tokens
// still counts toward DocCount. Document ids must not repeat or interleave
// within a writer.
func (w *Writer) AddDocument(docID uint32, tokens [][]byte) {
	w.observeDoc(docID)
	for _, token := range tokens {
		w.AddToken(docID, token)
	}
}

// AddToken records a single token occurrence and returns the token's term id
// within this writer's table.
func (w *Writer) AddToken(docID uint32, token []byte) stacker.UnorderedTermID {
	w.observeDoc(docID)
	id, tp := w.terms.GetOrCreate(token)
	tp.Record(w.heap, docID)
	return id
}

func (w *Writer) observeDoc(docID uint32) {
	if docID != w.currentDoc {
		w.currentDoc = docID
		w.docCount++
	}
}

// NumTerms returns the number of distinct terms interned so far.
func (w *Writer) NumTerms() int { return w.terms.Len() }

// DocCount returns the number of documents added so far.
func (w *Writer) DocCount() uint32 { return w.docCount }

// Saturated reports whether the term table passed its occupancy threshold.
// The caller should Flush soon after this trips; the table cannot grow.
func (w *Writer) Saturated() bool { return w.terms.IsSaturated() }

// ShouldFlush reports whether the segment should be flushed now, either
// because the term table is saturated or because the heap is nearly out of
// budget (above 7/8 occupancy, leaving headroom for the current document).
func (w *Writer) ShouldFlush() bool {
	return w.terms.IsSaturated() || w.heap.Len()*8 > w.heap.Capacity()*7
}

// Flush drains the term table into a Segment, in first-insertion order, and
// exhausts the writer. The segment owns all of its memory; the heap and
// table are discarded.
func (w *Writer) Flush() (*Segment, error) {
	if w.flushed {
		return nil, fmt.Errorf("postings: writer already flushed")
	}
	w.flushed = true

	seg := &Segment{
		terms:    make([]TermInfo, 0, w.terms.Len()),
		docCount: w.docCount,
	}
	for entry := range w.terms.All() {
		tp := stacker.Value[TermPostings](w.heap, entry.ValueAddr)
		if tp.Addr() != entry.ValueAddr {
			return nil, fmt.Errorf("postings: value back-reference mismatch for term %q (slot %d): stored %d, resolved %d",
				entry.Key, entry.TermID, tp.Addr(), entry.ValueAddr)
		}
		info := TermInfo{
			Term:     append([]byte(nil), entry.Key...),
			TermID:   entry.TermID,
			DocFreq:  tp.DocFreq(),
			Postings: make([]Posting, 0, tp.DocFreq()),
			Docs:     roaring.New(),
		}
		for doc, tf := range tp.All(w.heap) {
			info.Postings = append(info.Postings, Posting{DocID: doc, TermFreq: tf})
			info.Docs.Add(doc)
		}
		seg.terms = append(seg.terms, info)
	}

	w.heap.Reset()
	return seg, nil
}
