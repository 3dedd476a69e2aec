package stacker

import "iter"

const (
	// expullFirstBlockLen is the uint32 capacity of a list's first block.
	expullFirstBlockLen = 8
	// expullMaxBlockLen caps the exponential block growth.
	expullMaxBlockLen = 1024
	// expullBlockHeaderSize is the 4-byte next-block offset at the start of
	// every block.
	expullBlockHeaderSize = 4
)

// ExpUnrolledLinkedList is an append-only list of uint32s that lives entirely
// inside a Heap. It is the backing store for per-term accumulators: each
// interned term owns one and spills encoded postings into it as documents
// are ingested.
//
// Values are packed into heap blocks chained by 4-byte offsets. Block
// capacities grow exponentially (8, 16, ... up to 1024), so tiny terms cost a
// few dozen bytes while frequent terms amortize the link overhead away. The
// struct itself holds only scalars and offsets, which lets it be placed in
// the heap as an Allocable value.
type ExpUnrolledLinkedList struct {
	len      uint32
	head     Addr
	tail     Addr
	tailUsed uint32
	tailCap  uint32
}

// Init implements Allocable. The list keeps no back-reference to its own
// address; the first block is allocated lazily on the first Push.
func (l *ExpUnrolledLinkedList) Init(_ Addr) {
	*l = ExpUnrolledLinkedList{}
}

// Len returns the number of values pushed.
func (l *ExpUnrolledLinkedList) Len() int { return int(l.len) }

// Push appends v, allocating a new block from h when the tail block is full.
// h must be the heap the list itself resides in.
func (l *ExpUnrolledLinkedList) Push(h *Heap, v uint32) {
	if l.tailUsed == l.tailCap {
		l.grow(h)
	}
	h.writeUint32(l.tail+expullBlockHeaderSize+Addr(4*l.tailUsed), v)
	l.tailUsed++
	l.len++
}

func (l *ExpUnrolledLinkedList) grow(h *Heap) {
	nextCap := uint32(expullFirstBlockLen)
	if l.tailCap > 0 {
		nextCap = min(l.tailCap*2, expullMaxBlockLen)
	}
	// Allocation is zeroed, so the new block's next offset starts as null.
	block := h.allocate(expullBlockHeaderSize + 4*nextCap)
	if l.head == NullAddr {
		l.head = block
	} else {
		h.writeUint32(l.tail, uint32(block))
	}
	l.tail = block
	l.tailCap = nextCap
	l.tailUsed = 0
}

// All returns an iterator over the pushed values in push order.
//
// Block capacities are not stored per block; the walk re-derives the
// exponential schedule, which only holds for blocks allocated by Push.
func (l *ExpUnrolledLinkedList) All(h *Heap) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		remaining := l.len
		block := l.head
		blockCap := uint32(expullFirstBlockLen)
		for block != NullAddr && remaining > 0 {
			n := min(remaining, blockCap)
			for j := uint32(0); j < n; j++ {
				if !yield(h.readUint32(block + expullBlockHeaderSize + Addr(4*j))) {
					return
				}
			}
			remaining -= n
			block = Addr(h.readUint32(block))
			blockCap = min(blockCap*2, expullMaxBlockLen)
		}
	}
}
