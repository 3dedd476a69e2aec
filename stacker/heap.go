package stacker

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// Addr is an offset into a Heap. Offsets substitute for pointers: they are
// copyable, 4 bytes wide, and remain valid for the lifetime of the heap.
type Addr uint32

// NullAddr is the reserved null offset. The first heap byte is never handed
// out, so a zero Addr always means "no allocation".
const NullAddr Addr = 0

// BytesRef is the address of a length-prefixed byte string in a Heap.
type BytesRef Addr

// Addr returns the offset of the length prefix.
func (r BytesRef) Addr() Addr { return Addr(r) }

// IsNull reports whether the reference denotes no allocation.
func (r BytesRef) IsNull() bool { return Addr(r) == NullAddr }

// lenPrefixSize is the overhead of a byte-string allocation: a little-endian
// uint16 length stored immediately before the payload.
const lenPrefixSize = 2

// MaxKeyLen is the largest byte string a Heap can store, bounded by the
// uint16 length prefix.
const MaxKeyLen = 1<<16 - 1

// Allocable is implemented by fixed-size value types that live inside a Heap.
//
// Init is called exactly once, on zeroed memory, with the address the value
// occupies. The address enables self-referential bookkeeping (for example a
// back-reference checked during iteration); implementations that need no
// back-reference may ignore it.
//
// Value types must contain only scalar fields (no Go pointers, slices, maps
// or strings): the garbage collector does not scan heap-resident values.
type Allocable interface {
	Init(addr Addr)
}

// allocablePtr constrains PV to be a pointer to V implementing Allocable.
type allocablePtr[V any] interface {
	*V
	Allocable
}

// Heap is an append-only bump allocator backed by a single contiguous
// buffer. It never frees individual allocations: the whole heap is discarded
// (or Reset) when the owning batch is flushed.
//
// The buffer is sized once, from the memory budget returned by SplitMemory,
// and never moves, so raw pointers resolved from it stay valid until Reset.
// Exhausting the buffer is a contract violation (the caller failed to flush
// on saturation) and panics.
//
// A Heap is owned by a single indexing worker and is not safe for concurrent
// use.
type Heap struct {
	buf  []byte
	used uint32
}

// NewHeap creates a heap with the given fixed capacity in bytes. Offsets are
// 32-bit, so the capacity must fit in a uint32; larger (or negative)
// capacities panic before any memory is allocated.
func NewHeap(capacity int) *Heap {
	if capacity < 0 || uint64(capacity) > math.MaxUint32 {
		panic(fmt.Sprintf("stacker: heap capacity %d outside the 32-bit address range", capacity))
	}
	h := &Heap{buf: make([]byte, capacity)}
	// Reserve offset 0 as null.
	h.used = 1
	return h
}

// Len returns the number of bytes allocated, including the reserved null byte.
func (h *Heap) Len() int { return int(h.used) }

// Capacity returns the fixed heap capacity in bytes.
func (h *Heap) Capacity() int { return len(h.buf) }

// Reset discards every allocation and zeroes the used region so the heap can
// back a fresh batch. All previously returned offsets, slices and value
// pointers are invalidated.
func (h *Heap) Reset() {
	clear(h.buf[:h.used])
	h.used = 1
}

// allocate bump-allocates size bytes and returns their offset. The returned
// region is zeroed (the buffer starts zeroed and Reset re-zeroes it).
func (h *Heap) allocate(size uint32) Addr {
	if uint64(h.used)+uint64(size) > uint64(len(h.buf)) {
		panic(fmt.Sprintf("stacker: heap exhausted (%d of %d bytes used, %d requested); flush the batch before the memory budget runs out",
			h.used, len(h.buf), size))
	}
	addr := Addr(h.used)
	h.used += size
	return addr
}

// AllocBytes copies data into the heap behind a 2-byte length prefix and
// returns its reference. Panics if data exceeds MaxKeyLen.
func (h *Heap) AllocBytes(data []byte) BytesRef {
	if len(data) > MaxKeyLen {
		panic(fmt.Sprintf("stacker: byte string of %d bytes exceeds the %d byte limit", len(data), MaxKeyLen))
	}
	addr := h.allocate(lenPrefixSize + uint32(len(data)))
	binary.LittleEndian.PutUint16(h.buf[addr:], uint16(len(data)))
	copy(h.buf[addr+lenPrefixSize:], data)
	return BytesRef(addr)
}

// Bytes resolves a reference to the stored byte string. The returned slice
// borrows heap memory and is valid until Reset.
func (h *Heap) Bytes(ref BytesRef) []byte {
	start := uint32(ref.Addr()) + lenPrefixSize
	n := binary.LittleEndian.Uint16(h.buf[ref.Addr():])
	return h.buf[start : start+uint32(n)]
}

func (h *Heap) readUint32(addr Addr) uint32 {
	return binary.LittleEndian.Uint32(h.buf[addr:])
}

func (h *Heap) writeUint32(addr Addr, v uint32) {
	binary.LittleEndian.PutUint32(h.buf[addr:], v)
}

// Value resolves a heap address to a typed value pointer. The pointer borrows
// heap memory and is valid until Reset.
//
// Values are placed at whatever offset follows their key, so they may be
// unaligned; V must be a scalar-only struct tolerating unaligned access.
func Value[V any](h *Heap, addr Addr) *V {
	return (*V)(unsafe.Pointer(&h.buf[addr])) //nolint:gosec // offset-addressed heap requires unsafe
}

// AllocValue allocates a zeroed value of type V in the heap, runs its Init
// hook, and returns its address together with a typed pointer.
func AllocValue[V any, PV allocablePtr[V]](h *Heap) (Addr, PV) {
	addr := h.allocate(uint32(unsafe.Sizeof(*new(V))))
	v := PV(unsafe.Pointer(&h.buf[addr])) //nolint:gosec // offset-addressed heap requires unsafe
	v.Init(addr)
	return addr, v
}

// AllocKeyValue stores key (length-prefixed) and a zeroed value of type V in
// one contiguous heap region: the value starts immediately after the last key
// byte, with no gap. Keeping this a single allocation makes the key/value
// co-location invariant structural instead of an assumption between two calls.
//
// The returned value address always equals ref.Addr() + 2 + len(key); a
// defensive re-derivation through the stored length prefix panics on
// mismatch, since that would mean heap corruption.
func AllocKeyValue[V any, PV allocablePtr[V]](h *Heap, key []byte) (BytesRef, Addr, PV) {
	if len(key) > MaxKeyLen {
		panic(fmt.Sprintf("stacker: key of %d bytes exceeds the %d byte limit", len(key), MaxKeyLen))
	}

	valueSize := uint32(unsafe.Sizeof(*new(V)))
	base := h.allocate(lenPrefixSize + uint32(len(key)) + valueSize)

	binary.LittleEndian.PutUint16(h.buf[base:], uint16(len(key)))
	copy(h.buf[base+lenPrefixSize:], key)

	ref := BytesRef(base)
	valueAddr := Addr(uint32(base) + lenPrefixSize + uint32(len(key)))
	if got := Addr(uint32(ref.Addr()) + lenPrefixSize + uint32(len(h.Bytes(ref)))); got != valueAddr {
		panic(fmt.Sprintf("stacker: key/value contiguity violated (value at %d, key ends at %d)", valueAddr, got))
	}

	v := PV(unsafe.Pointer(&h.buf[valueAddr])) //nolint:gosec // offset-addressed heap requires unsafe
	v.Init(valueAddr)
	return ref, valueAddr, v
}
