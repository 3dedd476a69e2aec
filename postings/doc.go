// Package postings turns streams of (document, token) pairs into in-memory
// index segments.
//
// A Writer owns one stacker heap and term hash map, sized together from a
// per-worker memory budget. Every token is interned through the term map;
// its per-term accumulator (TermPostings) lives in the heap right behind the
// term's key bytes and collects (doc id, term frequency) pairs. When the
// table saturates, or the heap runs low, the caller flushes the writer into
// a Segment and starts a fresh one.
//
// Segments own their memory: term bytes are copied out of the heap, postings
// are decoded into slices, and per-term document sets are materialized as
// roaring bitmaps for the merge and query layers.
package postings
