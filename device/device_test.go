package device

import "testing"

import "github.com/stretchr/testify/assert"

func TestSelectFallsBackToCPU(t *testing.T) {
	for _, pref := range []string{"", "auto", "cpu", "cuda", "cuda:0", "gpu"} {
		d := Select(pref)
		assert.Equal(t, "cpu", d.Kind, "pref %q", pref)
		assert.Greater(t, d.Threads, 0)
		assert.NotEmpty(t, d.Vector)
		assert.NotEmpty(t, d.String())
	}
}
