package trainer

import "math"

import "gonum.org/v1/gonum/mat"

// WeightedNLL is the negative log likelihood of the labels under the
// log-softmax of the logits, with per-class weights and weighted-mean
// reduction. Returns the scalar loss and its gradient with respect to
// the logits. A nil weights slice means uniform class weights.
func WeightedNLL(logits *mat.Dense, labels []int, weights []float64) (float64, *mat.Dense) {
	batch, classes := logits.Dims()
	dlogits := mat.NewDense(batch, classes, nil)

	loss := 0.0
	weightSum := 0.0
	probs := make([][]float64, batch)
	for b := 0; b < batch; b++ {
		row := logits.RawRowView(b)

		max := math.Inf(-1)
		for _, v := range row {
			if v > max {
				max = v
			}
		}
		sum := 0.0
		p := make([]float64, classes)
		for c, v := range row {
			p[c] = math.Exp(v - max)
			sum += p[c]
		}
		logSum := math.Log(sum)
		for c := range p {
			p[c] /= sum
		}
		probs[b] = p

		w := 1.0
		if weights != nil {
			w = weights[labels[b]]
		}
		weightSum += w
		// -log softmax of the true class
		loss += w * (logSum - (row[labels[b]] - max))
	}
	if weightSum == 0 {
		weightSum = 1
	}
	loss /= weightSum

	for b := 0; b < batch; b++ {
		w := 1.0
		if weights != nil {
			w = weights[labels[b]]
		}
		drow := dlogits.RawRowView(b)
		for c := 0; c < classes; c++ {
			drow[c] = w * probs[b][c] / weightSum
		}
		drow[labels[b]] -= w / weightSum
	}
	return loss, dlogits
}

// ClassWeights turns per-label frequencies into inverse-frequency class
// weights, so rare labels contribute proportionally more to the
// gradient.
func ClassWeights(freq []float64) []float64 {
	out := make([]float64, len(freq))
	for i, f := range freq {
		if f <= 0 {
			f = 1
		}
		out[i] = 1 / f
	}
	return out
}

// Argmax returns the winning class of each logits row and its softmax
// probability.
func Argmax(logits *mat.Dense) (labels []int, probs []float64) {
	batch, classes := logits.Dims()
	labels = make([]int, batch)
	probs = make([]float64, batch)
	for b := 0; b < batch; b++ {
		row := logits.RawRowView(b)
		best := 0
		for c := 1; c < classes; c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		max := row[best]
		sum := 0.0
		for _, v := range row {
			sum += math.Exp(v - max)
		}
		labels[b] = best
		probs[b] = 1 / sum // exp(max-max)/sum
	}
	return
}
