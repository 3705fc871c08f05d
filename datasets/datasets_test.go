package datasets

import "fmt"
import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(content), 0644))
	return fname
}

func TestVocabFromFile(t *testing.T) {
	fname := writeFile(t, "terminal.idx", "1\tfoo\n2\tbar\n2\tBar\n3\tbaz\n")
	v, err := NewVocabFromFile(fname)
	require.NoError(t, err)

	assert.Equal(t, 4, v.Len())          // pad, foo, bar, baz
	assert.Equal(t, 4, v.DuplicateLen()) // ids 0..3
	assert.Equal(t, 5, v.TotalLen())     // pad + 4 surface entries

	assert.Equal(t, "foo", v.Token(1))
	assert.Equal(t, "bar", v.Token(2))
	id, ok := v.ID("Bar")
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Equal(t, PadToken, v.Token(99))
}

func TestVocabFromFileMalformed(t *testing.T) {
	for name, content := range map[string]string{
		"no tab":      "1 foo\n",
		"bad id":      "x\tfoo\n",
		"negative id": "-1\tfoo\n",
	} {
		t.Run(name, func(t *testing.T) {
			fname := writeFile(t, "bad.idx", content)
			_, err := NewVocabFromFile(fname)
			assert.Error(t, err)
		})
	}
}

func TestVocabSubtokensAndFreq(t *testing.T) {
	v := NewVocab()
	a := v.Add("get|value")
	v.Add("get|value")
	b := v.Add("set")

	assert.Equal(t, []string{"get", "value"}, v.Subtokens(a))
	assert.Equal(t, []string{"set"}, v.Subtokens(b))
	assert.Nil(t, v.Subtokens(PadID))

	freq := v.FreqList()
	assert.Equal(t, 2.0, freq[a])
	assert.Equal(t, 1.0, freq[b])
	// the pad slot never occurs but must not produce an infinite weight
	assert.Equal(t, 1.0, freq[PadID])
}

func newTestReader(t *testing.T) *Reader {
	t.Helper()
	dir := t.TempDir()
	terminal := filepath.Join(dir, "terminal.idx")
	path := filepath.Join(dir, "path.idx")
	corpus := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(terminal, []byte("1\tx\n2\ty\n3\tz\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("1\tup\n2\tdown\n"), 0644))

	var body string
	for i := 0; i < 20; i++ {
		label := "get|value"
		if i%2 == 1 {
			label = "set|value"
		}
		body += fmt.Sprintf("%s 1,1,2 2,2,3\n", label)
	}
	require.NoError(t, os.WriteFile(corpus, []byte(body), 0644))

	r, err := NewReader(corpus, path, terminal)
	require.NoError(t, err)
	return r
}

func TestReader(t *testing.T) {
	r := newTestReader(t)
	assert.Equal(t, 20, r.Len())
	assert.Equal(t, 3, r.LabelVocab.Len()) // pad + 2 labels
	assert.Equal(t, [][3]int{{1, 1, 2}, {2, 2, 3}}, r.Items[0].Contexts)
	assert.Equal(t, 0, r.Items[0].ID)
	assert.Equal(t, 19, r.Items[19].ID)

	freq := r.LabelVocab.FreqList()
	assert.Equal(t, 10.0, freq[r.Items[0].Label])
}

func TestReaderMalformedCorpus(t *testing.T) {
	dir := t.TempDir()
	terminal := filepath.Join(dir, "terminal.idx")
	path := filepath.Join(dir, "path.idx")
	require.NoError(t, os.WriteFile(terminal, []byte("1\tx\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("1\tup\n"), 0644))

	for name, body := range map[string]string{
		"label only":  "get\n",
		"short tuple": "get 1,1\n",
		"bad id":      "get 1,a,1\n",
		"empty":       "\n\n",
	} {
		t.Run(name, func(t *testing.T) {
			corpus := filepath.Join(dir, "corpus_"+name+".txt")
			require.NoError(t, os.WriteFile(corpus, []byte(body), 0644))
			_, err := NewReader(corpus, path, terminal)
			assert.Error(t, err)
		})
	}
}

func drain(t *testing.T, s Source) []*Batch {
	t.Helper()
	var out []*Batch
	for b := s.Next(); b != nil; b = s.Next() {
		out = append(out, b)
	}
	require.NoError(t, s.Err())
	return out
}

func TestLoaderBatches(t *testing.T) {
	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{ID: i, Label: i % 3, Contexts: [][3]int{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}}
	}
	l := NewLoader(items, 4, 2, 3)
	assert.Equal(t, 10, l.Examples())

	batches := drain(t, l)
	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Len())
	assert.Equal(t, 4, batches[1].Len())
	assert.Equal(t, 2, batches[2].Len())

	// order preserved across the worker pool
	assert.Equal(t, []int{0, 1, 2, 3}, batches[0].IDs)
	assert.Equal(t, []int{8, 9}, batches[2].IDs)

	// contexts truncated to max path length
	assert.Equal(t, []int{1, 2}, batches[0].Starts[0])
	assert.Equal(t, []int{1, 2}, batches[0].Paths[0])
}

func TestLoaderPadding(t *testing.T) {
	items := []Item{{ID: 0, Label: 1, Contexts: [][3]int{{5, 6, 7}}}}
	l := NewLoader(items, 2, 3, 1)
	batches := drain(t, l)
	require.Len(t, batches, 1)
	assert.Equal(t, []int{5, PadID, PadID}, batches[0].Starts[0])
	assert.Equal(t, []int{6, PadID, PadID}, batches[0].Paths[0])
	assert.Equal(t, []int{7, PadID, PadID}, batches[0].Ends[0])
}

func TestBuilderSplits(t *testing.T) {
	r := newTestReader(t)
	b := NewBuilder(r, BuildOptions{BatchSize: 4, MaxPathLength: 2, NumWorkers: 2, Seed: 7})

	assert.Equal(t, 16, b.TrainLen())
	assert.Equal(t, 2, b.DevLen())
	assert.Equal(t, 2, b.TestLen())

	seen := map[int]int{}
	for _, s := range []Source{b.Train(), b.Dev(), b.Test()} {
		for _, batch := range drain(t, s) {
			for _, id := range batch.IDs {
				seen[id]++
			}
		}
	}
	// every example lands in exactly one split
	require.Len(t, seen, 20)
	for id, n := range seen {
		assert.Equal(t, 1, n, "example %d", id)
	}
}

func TestBuilderRefreshKeepsMembership(t *testing.T) {
	r := newTestReader(t)
	b := NewBuilder(r, BuildOptions{BatchSize: 32, MaxPathLength: 2, NumWorkers: 1, Seed: 7})

	before := map[int]bool{}
	for _, batch := range drain(t, b.Train()) {
		for _, id := range batch.IDs {
			before[id] = true
		}
	}
	require.NoError(t, b.Refresh())
	after := map[int]bool{}
	for _, batch := range drain(t, b.Train()) {
		for _, id := range batch.IDs {
			after[id] = true
		}
	}
	assert.Equal(t, before, after)
}

func TestBuilderDeterministicSeed(t *testing.T) {
	r := newTestReader(t)
	b1 := NewBuilder(r, BuildOptions{BatchSize: 32, MaxPathLength: 2, NumWorkers: 1, Seed: 7})
	b2 := NewBuilder(r, BuildOptions{BatchSize: 32, MaxPathLength: 2, NumWorkers: 1, Seed: 7})

	ids := func(b *Builder) []int {
		var out []int
		for _, batch := range drain(t, b.Dev()) {
			out = append(out, batch.IDs...)
		}
		return out
	}
	assert.Equal(t, ids(b1), ids(b2))
}
