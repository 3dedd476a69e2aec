package postings

import (
	"iter"
	"math"

	"github.com/jason-wolfe/tantivy/stacker"
)

// noDoc marks a recorder that has not seen any document yet.
const noDoc = math.MaxUint32

// TermPostings is the per-term accumulator stored inline in the term hash
// map's heap. While a batch is ingested it tracks the current document's
// term frequency and spills finished (doc id, term frequency) pairs into a
// heap-resident unrolled list.
//
// It holds only scalars and heap offsets, which is what allows the term map
// to place it contiguously behind the term's key bytes.
type TermPostings struct {
	addr       stacker.Addr
	currentDoc uint32
	currentTF  uint32
	docFreq    uint32
	list       stacker.ExpUnrolledLinkedList
}

// Init implements stacker.Allocable. The value remembers its own heap
// address; Writer.Flush checks it against the address resolved from the
// term's slot, catching heap corruption before it reaches a segment.
func (p *TermPostings) Init(addr stacker.Addr) {
	p.addr = addr
	p.currentDoc = noDoc
}

// Addr returns the heap address this value was created at.
func (p *TermPostings) Addr() stacker.Addr { return p.addr }

// DocFreq returns the number of distinct documents recorded so far,
// including the one still being accumulated.
func (p *TermPostings) DocFreq() uint32 { return p.docFreq }

// Record counts one occurrence of the term in docID. Documents must be
// recorded in non-interleaved order: all tokens of a document before any
// token of the next.
func (p *TermPostings) Record(h *stacker.Heap, docID uint32) {
	if p.currentDoc != docID {
		p.closeDoc(h)
		p.currentDoc = docID
		p.currentTF = 0
		p.docFreq++
	}
	p.currentTF++
}

// closeDoc spills the pending (doc, tf) pair, if any, into the list.
func (p *TermPostings) closeDoc(h *stacker.Heap) {
	if p.currentDoc == noDoc {
		return
	}
	p.list.Push(h, p.currentDoc)
	p.list.Push(h, p.currentTF)
}

// All returns the recorded (doc id, term frequency) pairs in recording
// order. The pair still being accumulated is yielded last, without touching
// the heap, so flushing a batch never allocates.
func (p *TermPostings) All(h *stacker.Heap) iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		var doc uint32
		first := true
		for v := range p.list.All(h) {
			if first {
				doc = v
				first = false
				continue
			}
			if !yield(doc, v) {
				return
			}
			first = true
		}
		if p.currentDoc != noDoc {
			yield(p.currentDoc, p.currentTF)
		}
	}
}
