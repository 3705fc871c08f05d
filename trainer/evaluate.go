package trainer

import "github.com/pkg/errors"

import "github.com/neurlang/code2vec/datasets"
import "github.com/neurlang/code2vec/metrics"

// Evaluate scores one split without gradient work: the encoder runs in
// evaluation mode and only loss and predictions are collected. The loss
// is the running sum across batches.
func Evaluate(enc Encoder, src datasets.Source, engine *metrics.Engine, weights []float64) (float64, metrics.Result, error) {
	enc.SetTraining(false)

	var (
		loss      float64
		expected  []int
		predicted []int
	)
	for batch := src.Next(); batch != nil; batch = src.Next() {
		logits, _, _ := enc.Forward(batch.Starts, batch.Paths, batch.Ends)
		batchLoss, _ := WeightedNLL(logits, batch.Labels, weights)
		loss += batchLoss
		preds, _ := Argmax(logits)
		expected = append(expected, batch.Labels...)
		predicted = append(predicted, preds...)
	}
	if err := src.Err(); err != nil {
		return 0, metrics.Result{}, errors.Wrap(err, "eval batches")
	}

	res, err := engine.Compute(expected, predicted)
	if err != nil {
		return 0, metrics.Result{}, errors.Wrap(err, "score split")
	}
	return loss, res, nil
}

func (l *Loop) evaluate(src datasets.Source) (splitScores, error) {
	loss, res, err := Evaluate(l.Encoder, src, l.Engine, l.Weights)
	if err != nil {
		return splitScores{}, err
	}
	return splitScores{loss: loss, res: res}, nil
}
