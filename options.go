package tantivy

type options struct {
	memoryBudget int
	numWorkers   int
	logger       *Logger
}

// DefaultMemoryBudget is the default per-worker memory budget in bytes,
// split between each worker's heap and term table.
const DefaultMemoryBudget = 10_000_000

// DefaultNumWorkers is the default number of indexing workers.
const DefaultNumWorkers = 1

func defaultOptions() options {
	return options{
		memoryBudget: DefaultMemoryBudget,
		numWorkers:   DefaultNumWorkers,
		logger:       NoopLogger(),
	}
}

// Option configures an IndexWriter.
type Option func(*options)

// WithMemoryBudget sets the per-worker memory budget in bytes. Each worker
// sizes its heap and term table from this budget once, at construction; a
// budget too small for even a minimal table fails NewIndexWriter.
//
// Larger budgets produce fewer, larger segments. The budget is per worker,
// so total indexing memory is roughly budget * numWorkers.
func WithMemoryBudget(budget int) Option {
	return func(o *options) {
		o.memoryBudget = budget
	}
}

// WithNumWorkers sets the number of indexing workers. Each worker owns an
// independent (heap, term table) pair and produces its own segments, so
// workers never contend on shared state.
//
// With more than one worker, segment contents depend on document routing and
// are not deterministic across runs; use a single worker when reproducible
// segments matter (e.g. in tests).
func WithNumWorkers(n int) Option {
	return func(o *options) {
		o.numWorkers = n
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}
