package stacker

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"math"
	"unsafe"

	"github.com/jason-wolfe/tantivy/internal/hash"
)

// ErrBudgetTooSmall is returned by SplitMemory when the per-worker memory
// budget cannot fit even a two-slot term table. This is a configuration
// error: construction must be aborted, there is nothing to retry.
var ErrBudgetTooSmall = errors.New("stacker: per-worker memory budget too small")

// ErrBudgetTooLarge is returned by SplitMemory when the per-worker memory
// budget exceeds what 32-bit heap offsets can address.
var ErrBudgetTooLarge = errors.New("stacker: per-worker memory budget exceeds 32-bit addressing")

// slotSize is the byte footprint of one table slot.
const slotSize = int(unsafe.Sizeof(slot{}))

// SplitMemory partitions a per-worker memory budget (in bytes) between the
// heap and the term table.
//
// The table gets the largest power-of-two slot count that occupies less than
// one third of the budget; the heap gets the remainder. Capping the table at
// a third keeps the dominant share for the heap, which holds arbitrarily long
// keys and the per-term payloads.
//
// Returns the heap size in bytes and the table size as a number of bits.
func SplitMemory(perWorkerBudget int) (heapBytes, tableBits int, err error) {
	if perWorkerBudget > 0 && uint64(perWorkerBudget) > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrBudgetTooLarge, perWorkerBudget)
	}
	tableSizeLimit := perWorkerBudget / 3
	numBits := 0
	for slotSize*(1<<(numBits+1)) < tableSizeLimit {
		numBits++
	}
	if numBits == 0 {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrBudgetTooSmall, perWorkerBudget)
	}
	tableBytes := slotSize * (1 << numBits)
	return perWorkerBudget - tableBytes, numBits, nil
}

// slot is one entry of the table's backing array. The key and the value live
// contiguously in the heap; the slot only records where they start and the
// full 32-bit hash, so most probe mismatches are resolved without touching
// heap memory.
type slot struct {
	keyValueAddr BytesRef
	hash         uint32
}

func (s slot) empty() bool { return s.keyValueAddr.IsNull() }

// UnorderedTermID is the dense integer identity of a term: the index of its
// slot in the table. It is stable for the lifetime of the table and is used
// by consumers as a key into auxiliary per-term arrays. "Unordered" because
// it reflects hash placement, not insertion or lexical order.
type UnorderedTermID uint32

// quadraticProbe advances by increasing squared steps from the hash-derived
// start index, wrapping with the power-of-two table mask.
type quadraticProbe struct {
	hash uint32
	i    uint32
	mask uint32
}

func (p *quadraticProbe) next() uint32 {
	p.i++
	return (p.hash + p.i*p.i) & p.mask
}

// TermEntry is one element of a term table iteration.
type TermEntry struct {
	// Key borrows heap memory and is valid until the heap is Reset.
	Key []byte
	// ValueAddr is the heap address of the per-term value.
	ValueAddr Addr
	// TermID is the term's slot index.
	TermID UnorderedTermID
}

// TermHashMap interns term byte strings while documents are ingested,
// assigning each distinct term a stable UnorderedTermID and a heap-resident
// value of type V.
//
// The table has a fixed power-of-two capacity: no resize, no rehash, no
// deletion. Keeping the hot path free of those code paths is deliberate;
// instead, callers poll IsSaturated and flush the whole (table, heap) pair
// before occupancy gets anywhere near full. The quirky get-or-create API
// avoids hashing a key twice and avoids copying it unless it is new.
//
// A TermHashMap exclusively owns its heap for the table's lifetime and is
// not safe for concurrent use: one instance per indexing worker.
type TermHashMap[V any, PV allocablePtr[V]] struct {
	table    []slot
	heap     *Heap
	mask     uint32
	occupied []uint32
}

// NewTermHashMap creates a table with 1<<numBits empty slots backed by heap.
// The heap must outlive the table.
func NewTermHashMap[V any, PV allocablePtr[V]](numBits int, heap *Heap) *TermHashMap[V, PV] {
	tableSize := 1 << numBits
	return &TermHashMap[V, PV]{
		table:    make([]slot, tableSize),
		heap:     heap,
		mask:     uint32(tableSize - 1),
		occupied: make([]uint32, 0, tableSize/2),
	}
}

// Heap returns the heap backing this table.
func (m *TermHashMap[V, PV]) Heap() *Heap { return m.heap }

// Len returns the number of distinct terms interned so far.
func (m *TermHashMap[V, PV]) Len() int { return len(m.occupied) }

// Capacity returns the fixed slot count.
func (m *TermHashMap[V, PV]) Capacity() int { return len(m.table) }

// IsSaturated reports whether more than a third of the slots are occupied.
//
// This is an early-warning signal, not an error: probing stays cheap below
// the threshold, so the caller should stop inserting and flush the batch
// soon after it trips. It is monotonic for this append-only table.
func (m *TermHashMap[V, PV]) IsSaturated() bool {
	return len(m.table) < len(m.occupied)*3
}

// keyValue resolves a slot's heap reference into the key bytes and the
// address of the value stored right behind them.
func (m *TermHashMap[V, PV]) keyValue(ref BytesRef) ([]byte, Addr) {
	key := m.heap.Bytes(ref)
	return key, Addr(uint32(ref.Addr()) + lenPrefixSize + uint32(len(key)))
}

func (m *TermHashMap[V, PV]) setBucket(keyHash uint32, ref BytesRef, bucket uint32) {
	m.occupied = append(m.occupied, bucket)
	m.table[bucket] = slot{keyValueAddr: ref, hash: keyHash}
}

// GetOrCreate returns the term id for key and a mutable pointer to its
// heap-resident value, interning the key on first sight.
//
// On first sight the key bytes and a zeroed, Init-ed value are stored
// contiguously in the heap. Repeated calls with the same key are idempotent:
// they resolve to the same value memory, so mutations through an earlier
// pointer are visible through later ones. A slot whose hash matches but whose
// key bytes differ is a collision and probing continues past it.
//
// Panics if probing exceeds the table capacity, which means the table filled
// up because the caller ignored IsSaturated.
func (m *TermHashMap[V, PV]) GetOrCreate(key []byte) (UnorderedTermID, PV) {
	keyHash := hash.Murmur2(key)
	probe := quadraticProbe{hash: keyHash, mask: m.mask}
	for n := 0; n <= len(m.table); n++ {
		bucket := probe.next()
		kv := m.table[bucket]
		if kv.empty() {
			ref, _, v := AllocKeyValue[V, PV](m.heap, key)
			m.setBucket(keyHash, ref, bucket)
			return UnorderedTermID(bucket), v
		}
		if kv.hash == keyHash {
			storedKey, valueAddr := m.keyValue(kv.keyValueAddr)
			if bytes.Equal(storedKey, key) {
				return UnorderedTermID(bucket), PV(Value[V](m.heap, valueAddr))
			}
		}
	}
	panic(fmt.Sprintf("stacker: term hash map is full (%d slots); the batch must be flushed before full occupancy", len(m.table)))
}

// All returns an iterator over the interned terms in first-insertion order
// (not hash order, not sorted key order). Entries borrow heap memory;
// consumers that outlive the heap must copy the key bytes.
func (m *TermHashMap[V, PV]) All() iter.Seq[TermEntry] {
	return func(yield func(TermEntry) bool) {
		for _, bucket := range m.occupied {
			key, valueAddr := m.keyValue(m.table[bucket].keyValueAddr)
			if !yield(TermEntry{Key: key, ValueAddr: valueAddr, TermID: UnorderedTermID(bucket)}) {
				return
			}
		}
	}
}
