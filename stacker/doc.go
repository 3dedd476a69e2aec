// Package stacker provides the per-worker in-memory structures used while a
// segment is being built: a bump-allocated heap addressed by 32-bit offsets,
// a fixed-capacity term hash map that interns term byte strings, and an
// unrolled linked list for per-term accumulators.
//
// # Design
//
// Every token of every ingested document passes through TermHashMap, making
// this the hottest path of indexing. The structures trade generality for
// that hot path:
//
//   - The heap never frees: offsets stay valid until the whole batch is
//     flushed and the heap is Reset.
//   - The table never resizes, rehashes or deletes. Callers poll
//     IsSaturated and flush the (table, heap) pair well before full
//     occupancy.
//   - A term's key bytes and its value object are stored contiguously by a
//     single combined allocation, so one slot lookup yields both.
//
// # Memory budget
//
// SplitMemory partitions a per-worker budget between the heap and the table,
// reserving at most a third for the table. A budget too small for even a
// two-slot table fails construction with ErrBudgetTooSmall.
//
// # Ownership
//
// One heap and one table are created together per indexing worker, used by
// that worker only, and discarded together at flush. Nothing in this package
// is safe for concurrent use; independent worker pairs may of course run in
// parallel.
package stacker
