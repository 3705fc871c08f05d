package metrics

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

type subtokenTable map[int][]string

func (s subtokenTable) Subtokens(id int) []string { return s[id] }

// A = get|x, B = set|x
var testVocab = subtokenTable{
	1: {"get", "x"},
	2: {"set", "x"},
}

func TestParseMethod(t *testing.T) {
	for s, want := range map[string]Method{
		"exact":        Exact,
		"subtoken":     Subtoken,
		"ave_subtoken": AveSubtoken,
	} {
		m, err := ParseMethod(s)
		require.NoError(t, err)
		assert.Equal(t, want, m)
		assert.Equal(t, s, m.String())
	}
	_, err := ParseMethod("macro")
	assert.Error(t, err)
}

func TestExactMatch(t *testing.T) {
	e := NewEngine(testVocab, Exact)
	r, err := e.Compute([]int{1, 1, 2}, []int{1, 2, 2})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, r.Accuracy, 1e-12)
	// class 0 never occurs: the binary-style scores resolve to 0
	assert.Equal(t, 0.0, r.Precision)
	assert.Equal(t, 0.0, r.Recall)
	assert.Equal(t, 0.0, r.F1)
}

func TestExactMatchClassZero(t *testing.T) {
	e := NewEngine(testVocab, Exact)
	r, err := e.Compute([]int{0, 0, 1, 1}, []int{0, 1, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, r.Precision, 1e-12) // one of two predicted 0s is right
	assert.InDelta(t, 0.5, r.Recall, 1e-12)    // one of two expected 0s is found
	assert.InDelta(t, 0.5, r.F1, 1e-12)
}

// The reference scenario: expected [A,A,B], predicted [A,B,B] with
// A=[get,x], B=[set,x].
func TestSubtokenMatchScenario(t *testing.T) {
	e := NewEngine(testVocab, Subtoken)
	r, err := e.Compute([]int{1, 1, 2}, []int{1, 2, 2})
	require.NoError(t, err)
	// matches=5, expected_total=6, predicted_total=6
	assert.InDelta(t, 5.0/7.0, r.Accuracy, 1e-12)
	assert.InDelta(t, 5.0/6.0, r.Precision, 1e-12)
	assert.InDelta(t, 5.0/6.0, r.Recall, 1e-12)
	assert.InDelta(t, 5.0/6.0, r.F1, 1e-12)
}

func TestSubtokenMatchZeroTotals(t *testing.T) {
	e := NewEngine(subtokenTable{}, Subtoken)
	_, err := e.Compute([]int{1}, []int{1})
	assert.Error(t, err)
}

func TestSubtokenInvariants(t *testing.T) {
	e := NewEngine(testVocab, Subtoken)
	r, err := e.Compute([]int{1, 2, 1, 2}, []int{2, 1, 1, 1})
	require.NoError(t, err)
	for _, v := range []float64{r.Accuracy, r.Precision, r.Recall, r.F1} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestAveragedSubtokenMatch(t *testing.T) {
	e := NewEngine(testVocab, AveSubtoken)
	r, err := e.Compute([]int{1, 1, 2}, []int{1, 2, 2})
	require.NoError(t, err)
	// per-example: (1, 1, 1), (1/3, 1/2, 1/2), (1, 1, 1)
	assert.InDelta(t, (1.0+1.0/3.0+1.0)/3.0, r.Accuracy, 1e-12)
	assert.InDelta(t, (1.0+0.5+1.0)/3.0, r.Precision, 1e-12)
	assert.InDelta(t, (1.0+0.5+1.0)/3.0, r.Recall, 1e-12)
	assert.InDelta(t, (1.0+0.5+1.0)/3.0, r.F1, 1e-12)
}

func TestAveragedSubtokenSkipsEmpty(t *testing.T) {
	vocab := subtokenTable{1: {"get"}, 2: {"get"}}
	e := NewEngine(vocab, AveSubtoken)

	// id 9 has no subtokens: the pair is excluded from the averages
	r, err := e.Compute([]int{1, 9}, []int{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Accuracy)
	assert.Equal(t, 1.0, r.F1)

	// all pairs undefined is an error, never NaN
	_, err = e.Compute([]int{9}, []int{9})
	assert.Error(t, err)
}

// A model predicting one constant label must not crash any policy.
func TestDegenerateConstantPrediction(t *testing.T) {
	expected := []int{1, 2, 1, 2, 1}
	predicted := []int{2, 2, 2, 2, 2}
	for _, m := range []Method{Exact, Subtoken, AveSubtoken} {
		r, err := NewEngine(testVocab, m).Compute(expected, predicted)
		require.NoError(t, err, m.String())
		for _, v := range []float64{r.Accuracy, r.Precision, r.Recall, r.F1} {
			assert.False(t, v != v, "NaN from %s", m.String())
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestComputeIsPure(t *testing.T) {
	e := NewEngine(testVocab, Subtoken)
	expected := []int{1, 1, 2}
	predicted := []int{1, 2, 2}
	r1, err := e.Compute(expected, predicted)
	require.NoError(t, err)
	r2, err := e.Compute(expected, predicted)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestComputeRejectsBadInput(t *testing.T) {
	e := NewEngine(testVocab, Exact)
	_, err := e.Compute([]int{1}, []int{1, 2})
	assert.Error(t, err)
	_, err = e.Compute(nil, nil)
	assert.Error(t, err)
}
