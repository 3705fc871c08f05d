// Package metrics scores predicted label sequences against expected ones
// under three matching policies: exact label match, corpus-level subtoken
// match and per-example averaged subtoken match.
package metrics

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/stat"

// Method selects the label-matching policy.
type Method int

const (
	// Exact treats label ids as categorical classes. Accuracy is the
	// multiclass exact-match rate; precision, recall and F1 are the
	// binary-style scores of class 0 only.
	Exact Method = iota
	// Subtoken accumulates subtoken overlap over the whole input
	// (micro averaging).
	Subtoken
	// AveSubtoken scores each example on its own subtoken sets and
	// arithmetic-means the scores (macro averaging).
	AveSubtoken
)

// ParseMethod resolves the configuration surface names.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "exact":
		return Exact, nil
	case "subtoken":
		return Subtoken, nil
	case "ave_subtoken":
		return AveSubtoken, nil
	}
	return 0, errors.Errorf("unknown eval method %q", s)
}

func (m Method) String() string {
	switch m {
	case Exact:
		return "exact"
	case Subtoken:
		return "subtoken"
	case AveSubtoken:
		return "ave_subtoken"
	}
	return "unknown"
}

// Result holds the four scores of one evaluation.
type Result struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Vocabulary is the read-only slice of the label vocabulary the engine
// borrows: the ordered subtoken list per label id.
type Vocabulary interface {
	Subtokens(id int) []string
}

// Engine computes a Result from equal-length expected and predicted label
// id sequences. Compute is a pure function of its inputs and the borrowed
// vocabulary.
type Engine struct {
	vocab  Vocabulary
	method Method
}

// NewEngine binds a matching policy to a label vocabulary.
func NewEngine(vocab Vocabulary, method Method) *Engine {
	return &Engine{vocab: vocab, method: method}
}

// Method returns the engine's matching policy.
func (e *Engine) Method() Method {
	return e.method
}

// Compute scores predicted against expected. The sequences must be
// non-empty and of equal length.
func (e *Engine) Compute(expected, predicted []int) (Result, error) {
	if len(expected) != len(predicted) {
		return Result{}, errors.Errorf("expected %d labels, predicted %d", len(expected), len(predicted))
	}
	if len(expected) == 0 {
		return Result{}, errors.New("nothing to score")
	}
	switch e.method {
	case Exact:
		return exactMatch(expected, predicted), nil
	case Subtoken:
		return e.subtokenMatch(expected, predicted)
	case AveSubtoken:
		return e.averagedSubtokenMatch(expected, predicted)
	}
	return Result{}, errors.Errorf("unknown eval method %d", e.method)
}

func exactMatch(expected, predicted []int) Result {
	var hits, tp, fp, fn int
	for i := range expected {
		if expected[i] == predicted[i] {
			hits++
		}
		switch {
		case expected[i] == 0 && predicted[i] == 0:
			tp++
		case expected[i] != 0 && predicted[i] == 0:
			fp++
		case expected[i] == 0 && predicted[i] != 0:
			fn++
		}
	}
	r := Result{Accuracy: float64(hits) / float64(len(expected))}
	if tp+fp > 0 {
		r.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		r.Recall = float64(tp) / float64(tp+fn)
	}
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r
}

// countMatches counts expected subtokens present in the predicted list.
// Membership only: duplicates in the expected list each count again.
func countMatches(expected, predicted []string) (match int) {
	for _, s := range expected {
		if contains(predicted, s) {
			match++
		}
	}
	return
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (e *Engine) subtokenMatch(expected, predicted []int) (Result, error) {
	var match, expectedTotal, predictedTotal float64
	for i := range expected {
		exp := e.vocab.Subtokens(expected[i])
		act := e.vocab.Subtokens(predicted[i])
		match += float64(countMatches(exp, act))
		expectedTotal += float64(len(exp))
		predictedTotal += float64(len(act))
	}
	if expectedTotal == 0 || predictedTotal == 0 {
		return Result{}, errors.Errorf(
			"subtoken totals are zero (expected %v, predicted %v): the label vocabulary must provide at least one non-empty subtoken list",
			expectedTotal, predictedTotal)
	}
	r := Result{
		Accuracy:  match / (expectedTotal + predictedTotal - match),
		Precision: match / predictedTotal,
		Recall:    match / expectedTotal,
	}
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r, nil
}

// averagedSubtokenMatch scores each example on its own and means the
// scores. Examples whose expected or predicted subtoken list is empty are
// excluded from the averages: their per-example scores are undefined and
// must not surface as NaN downstream.
func (e *Engine) averagedSubtokenMatch(expected, predicted []int) (Result, error) {
	var accs, precs, recs, f1s []float64
	for i := range expected {
		exp := e.vocab.Subtokens(expected[i])
		act := e.vocab.Subtokens(predicted[i])
		if len(exp) == 0 || len(act) == 0 {
			continue
		}
		match := float64(countMatches(exp, act))
		acc := match / (float64(len(exp)) + float64(len(act)) - match)
		prec := match / float64(len(act))
		rec := match / float64(len(exp))
		f1 := 0.0
		if prec+rec > 0 {
			f1 = 2 * prec * rec / (prec + rec)
		}
		accs = append(accs, acc)
		precs = append(precs, prec)
		recs = append(recs, rec)
		f1s = append(f1s, f1)
	}
	if len(accs) == 0 {
		return Result{}, errors.New("no example has subtokens on both sides")
	}
	return Result{
		Accuracy:  stat.Mean(accs, nil),
		Precision: stat.Mean(precs, nil),
		Recall:    stat.Mean(recs, nil),
		F1:        stat.Mean(f1s, nil),
	}, nil
}
