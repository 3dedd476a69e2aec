package tantivy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jason-wolfe/tantivy/postings"
	"github.com/jason-wolfe/tantivy/stacker"
)

type document struct {
	id   uint32
	text string
}

// IndexWriter ingests documents and produces in-memory index segments.
//
// Documents are fanned out to a pool of workers. Each worker owns a fully
// independent (heap, term table) pair sized from the per-worker memory
// budget; there is no shared mutable state between workers, so interning
// needs no synchronization. A worker flushes its current segment whenever
// its term table saturates or its heap runs low, then starts a fresh pair.
//
// Call Commit exactly once to stop the workers and collect all segments.
type IndexWriter struct {
	opts     options
	docs     chan document
	group    *errgroup.Group
	mu       sync.Mutex
	segments []*postings.Segment
	nextDoc  atomic.Uint32

	// closeMu serializes Commit against in-flight AddDocument calls:
	// senders hold the read lock across the closed check and the channel
	// send, so the channel can only be closed while no send is in flight.
	closeMu sync.RWMutex
	closed  bool
}

// NewIndexWriter creates an IndexWriter and starts its workers.
//
// The memory budget is validated once up front: a budget too small for even
// a minimal term table is a configuration error and fails construction.
func NewIndexWriter(opts ...Option) (*IndexWriter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.numWorkers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumWorkers, o.numWorkers)
	}
	if _, _, err := stacker.SplitMemory(o.memoryBudget); err != nil {
		return nil, err
	}

	w := &IndexWriter{
		opts:  o,
		docs:  make(chan document, 4*o.numWorkers),
		group: new(errgroup.Group),
	}
	for i := 0; i < o.numWorkers; i++ {
		w.group.Go(func() error {
			return w.runWorker(i)
		})
	}
	return w, nil
}

// AddDocument queues one document for indexing and returns its document id.
// Ids are assigned in call order, starting at zero.
func (w *IndexWriter) AddDocument(ctx context.Context, text string) (uint32, error) {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()

	if w.closed {
		return 0, ErrWriterClosed
	}
	id := w.nextDoc.Add(1) - 1
	select {
	case w.docs <- document{id: id, text: text}:
		return id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Commit stops the workers, flushes every in-progress segment and returns
// all segments produced since construction. The writer cannot be reused.
func (w *IndexWriter) Commit(ctx context.Context) ([]*postings.Segment, error) {
	w.closeMu.Lock()
	if w.closed {
		w.closeMu.Unlock()
		return nil, ErrWriterClosed
	}
	w.closed = true
	close(w.docs)
	w.closeMu.Unlock()
	if err := w.group.Wait(); err != nil {
		w.opts.logger.LogCommit(ctx, 0, 0, err)
		return nil, err
	}

	w.mu.Lock()
	segments := w.segments
	w.mu.Unlock()

	w.opts.logger.LogCommit(ctx, len(segments), w.nextDoc.Load(), nil)
	return segments, nil
}

func (w *IndexWriter) runWorker(workerID int) error {
	pw, err := postings.NewWriter(w.opts.memoryBudget)
	if err != nil {
		return err
	}

	for doc := range w.docs {
		pw.AddDocument(doc.id, tokenize(doc.text))
		if pw.ShouldFlush() {
			if err := w.flush(workerID, pw); err != nil {
				return err
			}
			if pw, err = postings.NewWriter(w.opts.memoryBudget); err != nil {
				return err
			}
		}
	}

	if pw.DocCount() > 0 {
		return w.flush(workerID, pw)
	}
	return nil
}

func (w *IndexWriter) flush(workerID int, pw *postings.Writer) error {
	seg, err := pw.Flush()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.segments = append(w.segments, seg)
	w.mu.Unlock()

	w.opts.logger.LogSegmentFlush(context.Background(), workerID, seg.NumTerms(), seg.DocCount())
	return nil
}

// tokenize lowercases text and splits it on whitespace.
func tokenize(text string) [][]byte {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([][]byte, len(fields))
	for i, f := range fields {
		tokens[i] = []byte(f)
	}
	return tokens
}
