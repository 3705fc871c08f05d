package trainer

import "strings"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"
import "go.uber.org/zap"
import "go.uber.org/zap/zaptest/observer"

func TestZapSinkShape(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewZapSink(zap.New(core))

	sink.Emit("dev_f1", 0.75)
	sink.Emit("train_loss", 12.5)

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "dev_f1", fields["metric"])
	assert.Equal(t, 0.75, fields["value"])
	assert.NotEmpty(t, fields["run"])
	// one run id per sink
	assert.Equal(t, fields["run"], entries[1].ContextMap()["run"])
}

func TestZapSinkDistinctRuns(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	NewZapSink(logger).Emit("a", 1)
	NewZapSink(logger).Emit("a", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].ContextMap()["run"], entries[1].ContextMap()["run"])
}

func TestTSVScalars(t *testing.T) {
	var sb strings.Builder
	s := TSVScalars{W: &sb}
	s.Add("dev_loss", 0.5, 0)
	s.Add("dev_loss", 0.25, 1)

	assert.Equal(t, "dev_loss\t0.5\t0\ndev_loss\t0.25\t1\n", sb.String())
}
