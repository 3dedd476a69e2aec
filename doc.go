// Package tantivy provides the in-memory indexing core of a full-text
// search engine: term interning, per-term postings accumulation, and
// memory-budgeted segment building.
//
// # Quick Start
//
//	ctx := context.Background()
//	w, _ := tantivy.NewIndexWriter(tantivy.WithMemoryBudget(10_000_000))
//	w.AddDocument(ctx, "the quick brown fox")
//	w.AddDocument(ctx, "the lazy dog")
//	segments, _ := w.Commit(ctx)
//
//	for _, seg := range segments {
//	    for _, term := range seg.Dictionary() {
//	        fmt.Println(string(term.Term), term.DocFreq)
//	    }
//	}
//
// # Architecture
//
// Every token of every document passes through a per-worker term hash map
// (package stacker): a fixed-capacity, quadratic-probing table that interns
// term bytes in a bump-allocated heap and hands back a heap-resident
// per-term accumulator (package postings). When a worker's table saturates,
// or its heap nears the memory budget, the worker flushes its batch into an
// immutable in-memory segment and starts over.
//
// Workers are fully independent: one heap and one table per worker, no
// shared mutation, no locks on the token hot path. Coordination happens only
// when flushed segments are collected at commit.
//
// # Scope
//
// This module builds segments in memory. Query evaluation, scoring, segment
// merging and on-disk persistence are separate concerns layered on top of
// the segments produced here.
package tantivy
