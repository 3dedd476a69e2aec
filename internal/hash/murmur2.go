package hash

import "encoding/binary"

const (
	// murmur2Seed is the fixed seed for term hashing. Changing it changes
	// every bucket assignment, so it is pinned by regression tests.
	murmur2Seed uint32 = 3_242_157_231

	// murmur2M is the Murmur2 32-bit multiplier.
	murmur2M uint32 = 0x5bd1e995
)

// Murmur2 computes the 32-bit Murmur2 hash of data.
//
// This is the hash used to bucket terms during indexing. It is not a
// cryptographic hash and is not compatible with any external system; the only
// guarantee is that equal byte strings hash equal, deterministically across
// process runs. Full 4-byte words are consumed in little-endian order, the
// 1-3 trailing bytes are folded in afterwards.
func Murmur2(data []byte) uint32 {
	h := murmur2Seed ^ uint32(len(data))

	i := 0
	for ; i+4 <= len(data); i += 4 {
		k := binary.LittleEndian.Uint32(data[i:])
		k *= murmur2M
		k ^= k >> 24
		k *= murmur2M
		h *= murmur2M
		h ^= k
	}

	switch len(data) - i {
	case 3:
		h ^= uint32(data[i+2]) << 16
		h ^= uint32(data[i+1]) << 8
		h ^= uint32(data[i])
		h *= murmur2M
	case 2:
		h ^= uint32(data[i+1]) << 8
		h ^= uint32(data[i])
		h *= murmur2M
	case 1:
		h ^= uint32(data[i])
		h *= murmur2M
	}

	h ^= h >> 13
	h *= murmur2M
	h ^= h >> 15

	return h
}
