package datasets

import "bufio"
import "os"
import "strconv"
import "strings"

import "github.com/pkg/errors"

// PadID is the reserved padding id in every vocabulary.
const PadID = 0

// PadToken is the surface form of the padding id.
const PadToken = "<PAD/>"

// Vocab is a bidirectional token table. Several surface tokens may share
// one id (duplicates), so the embedding table is sized by DuplicateLen,
// not by the number of distinct tokens. Label vocabularies additionally
// carry ordered subtoken lists and per-label frequencies. A Vocab is
// immutable once the corpus is read; the trainer and the metric engine
// borrow it read-only.
type Vocab struct {
	itos      []string
	stoi      map[string]int
	subtokens [][]string
	freq      []float64
	total     int
}

// NewVocab returns an empty vocabulary holding only the padding token.
func NewVocab() *Vocab {
	v := &Vocab{stoi: map[string]int{}}
	v.Add(PadToken)
	return v
}

// NewVocabFromFile reads an index file with one "id<TAB>token" entry per
// line. Lines mapping a new surface token to an already known id count as
// duplicates.
func NewVocabFromFile(fname string) (*Vocab, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "open index %s", fname)
	}
	defer file.Close()

	v := NewVocab()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		id, token, err := parseIndexLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", fname, lineno)
		}
		v.put(id, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read index %s", fname)
	}
	return v, nil
}

func parseIndexLine(line string) (int, string, error) {
	sep := strings.IndexByte(line, '\t')
	if sep < 0 {
		return 0, "", errors.Errorf("malformed index line %q", line)
	}
	id, err := strconv.Atoi(line[:sep])
	if err != nil {
		return 0, "", errors.Wrapf(err, "malformed id in %q", line)
	}
	if id < 0 {
		return 0, "", errors.Errorf("negative id in %q", line)
	}
	return id, line[sep+1:], nil
}

// put maps token to id, growing the table as needed.
func (v *Vocab) put(id int, token string) {
	for len(v.itos) <= id {
		v.itos = append(v.itos, "")
		v.subtokens = append(v.subtokens, nil)
		v.freq = append(v.freq, 0)
	}
	if v.itos[id] == "" {
		v.itos[id] = token
		v.subtokens[id] = splitSubtokens(token)
	}
	v.stoi[token] = id
	v.total++
}

// Add interns a token, allocating the next free id for unseen ones, and
// bumps its frequency count. Used while reading label columns from the
// corpus.
func (v *Vocab) Add(token string) int {
	id, ok := v.stoi[token]
	if !ok {
		id = len(v.itos)
		v.put(id, token)
	}
	v.freq[id]++
	return id
}

// splitSubtokens splits a label such as "get|value" into its ordered
// subtokens. Tokens without separators yield a single-element list; the
// padding token yields none.
func splitSubtokens(token string) []string {
	if token == PadToken {
		return nil
	}
	parts := strings.Split(token, "|")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Len is the number of distinct ids carrying a token.
func (v *Vocab) Len() (o int) {
	for _, t := range v.itos {
		if t != "" {
			o++
		}
	}
	return
}

// DuplicateLen is the embedding table size: one slot per id, including
// ids only reachable through duplicate surface tokens.
func (v *Vocab) DuplicateLen() int {
	return len(v.itos)
}

// TotalLen is the number of surface entries, duplicates included.
func (v *Vocab) TotalLen() int {
	return v.total
}

// Token returns the canonical surface form of id.
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.itos) {
		return PadToken
	}
	return v.itos[id]
}

// ID resolves a surface token, reporting whether it is known.
func (v *Vocab) ID(token string) (int, bool) {
	id, ok := v.stoi[token]
	return id, ok
}

// Subtokens returns the ordered subtoken list of a label id. The returned
// slice is shared and must not be mutated.
func (v *Vocab) Subtokens(id int) []string {
	if id < 0 || id >= len(v.subtokens) {
		return nil
	}
	return v.subtokens[id]
}

// FreqList returns per-id occurrence counts. Every count is at least 1 so
// that inverse-frequency class weights stay finite.
func (v *Vocab) FreqList() []float64 {
	out := make([]float64, len(v.freq))
	for i, f := range v.freq {
		if f < 1 {
			f = 1
		}
		out[i] = f
	}
	return out
}
