package datasets

import "bufio"
import "os"
import "strconv"
import "strings"

import "github.com/pkg/errors"

// Item is one labelled example: an id, a label id and a bag of
// (start terminal, path, end terminal) id triples.
type Item struct {
	ID       int
	Label    int
	Contexts [][3]int
}

// Reader loads a path-context corpus and its vocabularies. The corpus has
// one example per line: a label token followed by whitespace-separated
// "start,path,end" id triples. Terminal and path ids refer to the index
// files; the label vocabulary is built while reading.
type Reader struct {
	Items []Item

	TerminalVocab *Vocab
	PathVocab     *Vocab
	LabelVocab    *Vocab
}

// NewReader reads the corpus and both index files. Any malformed line is
// fatal: a partially read corpus must not train.
func NewReader(corpusPath, pathIdxPath, terminalIdxPath string) (*Reader, error) {
	terminals, err := NewVocabFromFile(terminalIdxPath)
	if err != nil {
		return nil, err
	}
	paths, err := NewVocabFromFile(pathIdxPath)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		TerminalVocab: terminals,
		PathVocab:     paths,
		LabelVocab:    NewVocab(),
	}

	file, err := os.Open(corpusPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open corpus %s", corpusPath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 4*1024*1024), 4*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		item, err := r.parseItem(len(r.Items), line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", corpusPath, lineno)
		}
		r.Items = append(r.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read corpus %s", corpusPath)
	}
	if len(r.Items) == 0 {
		return nil, errors.Errorf("corpus %s holds no examples", corpusPath)
	}
	return r, nil
}

func (r *Reader) parseItem(id int, line string) (Item, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Item{}, errors.Errorf("example needs a label and at least one context, got %q", line)
	}
	item := Item{
		ID:       id,
		Label:    r.LabelVocab.Add(fields[0]),
		Contexts: make([][3]int, 0, len(fields)-1),
	}
	for _, f := range fields[1:] {
		parts := strings.Split(f, ",")
		if len(parts) != 3 {
			return Item{}, errors.Errorf("malformed context %q", f)
		}
		var ctx [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return Item{}, errors.Wrapf(err, "malformed context %q", f)
			}
			if n < 0 {
				return Item{}, errors.Errorf("negative id in context %q", f)
			}
			ctx[i] = n
		}
		if ctx[0] >= r.TerminalVocab.DuplicateLen() || ctx[2] >= r.TerminalVocab.DuplicateLen() {
			return Item{}, errors.Errorf("terminal id out of range in context %q", f)
		}
		if ctx[1] >= r.PathVocab.DuplicateLen() {
			return Item{}, errors.Errorf("path id out of range in context %q", f)
		}
		item.Contexts = append(item.Contexts, ctx)
	}
	return item, nil
}

// Len is the total number of examples in the corpus.
func (r *Reader) Len() int {
	return len(r.Items)
}
