package datasets

import "math/rand"

// BuildOptions shape the splits and loaders a Builder hands out.
type BuildOptions struct {
	BatchSize     int
	MaxPathLength int
	NumWorkers    int
	Seed          int64

	// DevFraction and TestFraction default to 0.1 each when zero.
	DevFraction  float64
	TestFraction float64
}

// Builder owns the train/dev/test split of a corpus and hands out fresh
// loaders per epoch. The dev and test splits are fixed for the run; only
// the training split is reshuffled by Refresh.
type Builder struct {
	opt BuildOptions
	rng *rand.Rand

	train []Item
	dev   []Item
	test  []Item
}

// NewBuilder splits the reader's examples with a seeded shuffle so runs
// with the same seed see the same splits.
func NewBuilder(r *Reader, opt BuildOptions) *Builder {
	if opt.DevFraction <= 0 {
		opt.DevFraction = 0.1
	}
	if opt.TestFraction <= 0 {
		opt.TestFraction = 0.1
	}
	rng := rand.New(rand.NewSource(opt.Seed))

	items := make([]Item, len(r.Items))
	copy(items, r.Items)
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	nDev := int(float64(len(items)) * opt.DevFraction)
	nTest := int(float64(len(items)) * opt.TestFraction)
	nTrain := len(items) - nDev - nTest

	return &Builder{
		opt:   opt,
		rng:   rng,
		train: items[:nTrain],
		dev:   items[nTrain : nTrain+nDev],
		test:  items[nTrain+nDev:],
	}
}

// Refresh reshuffles the training split in place. Called at the top of
// every epoch.
func (b *Builder) Refresh() error {
	b.rng.Shuffle(len(b.train), func(i, j int) {
		b.train[i], b.train[j] = b.train[j], b.train[i]
	})
	return nil
}

// Train returns a fresh loader over the training split.
func (b *Builder) Train() Source {
	return b.load(b.train)
}

// Dev returns a fresh loader over the dev split.
func (b *Builder) Dev() Source {
	return b.load(b.dev)
}

// Test returns a fresh loader over the test split.
func (b *Builder) Test() Source {
	return b.load(b.test)
}

func (b *Builder) load(items []Item) Source {
	return NewLoader(items, b.opt.BatchSize, b.opt.MaxPathLength, b.opt.NumWorkers)
}

// TrainLen, DevLen and TestLen report split sizes in examples.
func (b *Builder) TrainLen() int { return len(b.train) }

// DevLen reports the dev split size.
func (b *Builder) DevLen() int { return len(b.dev) }

// TestLen reports the test split size.
func (b *Builder) TestLen() int { return len(b.test) }
