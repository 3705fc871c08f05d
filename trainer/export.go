package trainer

import "fmt"
import "io"
import "strconv"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/code2vec/datasets"

// WriteVectorHeader writes the "<item_count>\t<vector_dim>" header line.
// It is written once by the caller before the first export call; the
// exporter itself never writes it.
func WriteVectorHeader(w io.Writer, itemCount, dim int) error {
	_, err := fmt.Fprintf(w, "%d\t%d\n", itemCount, dim)
	return errors.Wrap(err, "write vector header")
}

// ExportVectors writes one "label<TAB>v0 v1 ..." line per example of the
// split to vecW. When resW is non-nil it additionally records
// "id<TAB>correct<TAB>expected<TAB>predicted<TAB>probability" per
// example. The encoder runs in evaluation mode. Returns the number of
// exported examples; any write failure is fatal and propagates.
func ExportVectors(enc Encoder, src datasets.Source, vocab LabelVocab, vecW, resW io.Writer) (int, error) {
	enc.SetTraining(false)

	count := 0
	var sb strings.Builder
	for batch := src.Next(); batch != nil; batch = src.Next() {
		logits, code, _ := enc.Forward(batch.Starts, batch.Paths, batch.Ends)
		preds, probs := Argmax(logits)

		for row := 0; row < batch.Len(); row++ {
			label := vocab.Token(batch.Labels[row])

			sb.Reset()
			sb.WriteString(label)
			sb.WriteByte('\t')
			vec := code.RawRowView(row)
			for i, v := range vec {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
			sb.WriteByte('\n')
			if _, err := io.WriteString(vecW, sb.String()); err != nil {
				return count, errors.Wrap(err, "write code vector")
			}

			if resW != nil {
				predicted := vocab.Token(preds[row])
				_, err := fmt.Fprintf(resW, "%d\t%t\t%s\t%s\t%v\n",
					batch.IDs[row], label == predicted, label, predicted, probs[row])
				if err != nil {
					return count, errors.Wrap(err, "write test result")
				}
			}
			count++
		}
	}
	if err := src.Err(); err != nil {
		return count, errors.Wrap(err, "export batches")
	}
	return count, nil
}
