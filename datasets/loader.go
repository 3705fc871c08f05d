package datasets

import "sync"

import "github.com/panjf2000/ants/v2"
import "github.com/pkg/errors"

// Batch is one fixed-width training batch. Rows are examples; Starts,
// Paths and Ends are padded with PadID out to the widest context count
// allowed by the loader. Batches are transient: the loop consumes one and
// drops it.
type Batch struct {
	IDs    []int
	Starts [][]int
	Paths  [][]int
	Ends   [][]int
	Labels []int
}

// Len is the number of examples in the batch.
func (b *Batch) Len() int {
	return len(b.Labels)
}

// Source yields batches until exhausted. Next returns nil once the split
// is drained; Err reports the first production failure afterwards.
type Source interface {
	Next() *Batch
	Err() error
	Examples() int
}

// Loader assembles the batches of one split. Production runs on a bounded
// ants worker pool (only the producers touch the shared read-only items);
// consumption is strictly sequential and preserves split order.
type Loader struct {
	out      chan *Batch
	examples int

	mu  sync.Mutex
	err error
}

// NewLoader cuts items into batches of batchSize, each padded to at most
// maxPathLength contexts, produced by up to workers goroutines.
func NewLoader(items []Item, batchSize, maxPathLength, workers int) *Loader {
	if batchSize <= 0 || maxPathLength <= 0 {
		l := &Loader{out: make(chan *Batch)}
		l.fail(errors.Errorf("loader needs positive batch size and path length, got %d and %d", batchSize, maxPathLength))
		close(l.out)
		return l
	}
	if workers <= 0 {
		workers = 1
	}

	n := (len(items) + batchSize - 1) / batchSize
	l := &Loader{
		out:      make(chan *Batch, workers),
		examples: len(items),
	}

	slots := make([]chan *Batch, n)
	for i := range slots {
		slots[i] = make(chan *Batch, 1)
	}

	go func() {
		defer close(l.out)

		pool, err := ants.NewPool(workers)
		if err != nil {
			l.fail(errors.Wrap(err, "batch producer pool"))
			return
		}
		defer pool.Release()

		for i := 0; i < n; i++ {
			i := i
			lo := i * batchSize
			hi := lo + batchSize
			if hi > len(items) {
				hi = len(items)
			}
			if err := pool.Submit(func() {
				slots[i] <- buildBatch(items[lo:hi], maxPathLength)
			}); err != nil {
				l.fail(errors.Wrap(err, "submit batch producer"))
				slots[i] <- nil
			}
		}
		for i := 0; i < n; i++ {
			b := <-slots[i]
			if b == nil {
				return
			}
			l.out <- b
		}
	}()

	return l
}

// buildBatch pads a slice of items into one Batch.
func buildBatch(items []Item, maxPathLength int) *Batch {
	b := &Batch{
		IDs:    make([]int, len(items)),
		Starts: make([][]int, len(items)),
		Paths:  make([][]int, len(items)),
		Ends:   make([][]int, len(items)),
		Labels: make([]int, len(items)),
	}
	for row, item := range items {
		b.IDs[row] = item.ID
		b.Labels[row] = item.Label
		starts := make([]int, maxPathLength)
		paths := make([]int, maxPathLength)
		ends := make([]int, maxPathLength)
		for col, ctx := range item.Contexts {
			if col >= maxPathLength {
				break
			}
			starts[col] = ctx[0]
			paths[col] = ctx[1]
			ends[col] = ctx[2]
		}
		b.Starts[row] = starts
		b.Paths[row] = paths
		b.Ends[row] = ends
	}
	return b
}

func (l *Loader) fail(err error) {
	l.mu.Lock()
	if l.err == nil {
		l.err = err
	}
	l.mu.Unlock()
}

// Next blocks until the next batch is produced. Returns nil when the
// split is drained or production failed.
func (l *Loader) Next() *Batch {
	return <-l.out
}

// Err reports the first production failure, if any.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Examples is the number of examples this loader will emit in total.
func (l *Loader) Examples() int {
	return l.examples
}
