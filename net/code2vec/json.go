package code2vec

import "compress/zlib"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

type paramBlob struct {
	Name string    `json:"name"`
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// WriteZlibWeights writes all model parameters as zlib-compressed JSON.
func (m *Model) WriteZlibWeights(w io.Writer) error {
	zw := zlib.NewWriter(w)
	blobs := make([]paramBlob, 0, len(m.Parameters()))
	for _, p := range m.Parameters() {
		rows, cols := p.Value.Dims()
		blobs = append(blobs, paramBlob{
			Name: p.Name,
			Rows: rows,
			Cols: cols,
			Data: p.Value.RawMatrix().Data,
		})
	}
	if err := json.NewEncoder(zw).Encode(blobs); err != nil {
		return errors.Wrap(err, "encode weights")
	}
	return errors.Wrap(zw.Close(), "close weights stream")
}

// WriteZlibWeightsToFile writes model weights to a zlib-compressed JSON
// file, overwriting any previous checkpoint at that path.
func (m *Model) WriteZlibWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create checkpoint %s", name)
	}
	err = m.WriteZlibWeights(file)
	if cerr := file.Close(); err == nil {
		err = errors.Wrapf(cerr, "close checkpoint %s", name)
	}
	return err
}

// ReadZlibWeights loads model parameters from a zlib-compressed JSON
// stream. The stored shapes must match the model's shapes exactly.
func (m *Model) ReadZlibWeights(r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "open weights stream")
	}
	defer zr.Close()

	var blobs []paramBlob
	if err := json.NewDecoder(zr).Decode(&blobs); err != nil {
		return errors.Wrap(err, "decode weights")
	}
	byName := map[string]paramBlob{}
	for _, b := range blobs {
		byName[b.Name] = b
	}
	for _, p := range m.Parameters() {
		b, ok := byName[p.Name]
		if !ok {
			return errors.Errorf("checkpoint misses parameter %s", p.Name)
		}
		rows, cols := p.Value.Dims()
		if b.Rows != rows || b.Cols != cols || len(b.Data) != rows*cols {
			return errors.Errorf("parameter %s has shape %dx%d, checkpoint holds %dx%d",
				p.Name, rows, cols, b.Rows, b.Cols)
		}
		copy(p.Value.RawMatrix().Data, b.Data)
	}
	return nil
}

// ReadZlibWeightsFromFile reads model weights from a zlib-compressed
// JSON file.
func (m *Model) ReadZlibWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "open checkpoint %s", name)
	}
	defer file.Close()
	return m.ReadZlibWeights(file)
}
