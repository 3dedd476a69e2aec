// Package hash provides the non-cryptographic hash function used for term
// bucketing during indexing.
//
// # Murmur2
//
// Term interning uses a 32-bit Murmur2 variant (multiplier 0x5bd1e995, fixed
// seed) chosen for:
//
//   - Very low cost on short keys (every token of every document is hashed)
//   - Good avalanche behavior, keeping probe chains short in the
//     quadratic-probing term table
//   - Deterministic output across process runs, which keeps segment contents
//     reproducible in tests
//
// Collisions across unequal strings are possible and are tolerated by the
// term table; callers must always compare key bytes on a hash match.
//
// # Usage
//
//	h := hash.Murmur2([]byte("quick"))
package hash
