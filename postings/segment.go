package postings

import (
	"bytes"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/jason-wolfe/tantivy/stacker"
)

// Posting is one (document, term frequency) pair.
type Posting struct {
	DocID    uint32
	TermFreq uint32
}

// TermInfo is the flushed form of one interned term.
type TermInfo struct {
	// Term owns its bytes; the heap the term was interned in is gone by the
	// time a segment is read.
	Term []byte
	// TermID is the term's slot index in the table that produced this
	// segment. Dense within the table, unique only per segment.
	TermID stacker.UnorderedTermID
	// DocFreq is the number of distinct documents containing the term.
	DocFreq uint32
	// Postings holds the (doc, tf) pairs in recording order.
	Postings []Posting
	// Docs is the set of documents containing the term.
	Docs *roaring.Bitmap
}

// Segment is the in-memory result of flushing one (heap, table) pair. Terms
// are kept in first-insertion order; Dictionary sorts a copy for consumers
// that persist a term dictionary.
type Segment struct {
	terms    []TermInfo
	docCount uint32
}

// Terms returns the flushed terms in first-insertion order.
func (s *Segment) Terms() []TermInfo { return s.terms }

// NumTerms returns the number of distinct terms in the segment.
func (s *Segment) NumTerms() int { return len(s.terms) }

// DocCount returns the number of documents ingested into the segment.
func (s *Segment) DocCount() uint32 { return s.docCount }

// Dictionary returns the terms sorted by key bytes, as they would be laid
// out in a persisted term dictionary. The underlying TermInfo values are
// shared with Terms.
func (s *Segment) Dictionary() []TermInfo {
	dict := make([]TermInfo, len(s.terms))
	copy(dict, s.terms)
	sort.Slice(dict, func(i, j int) bool {
		return bytes.Compare(dict[i].Term, dict[j].Term) < 0
	})
	return dict
}
