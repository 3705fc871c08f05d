package trainer

import "fmt"
import "io"

import "github.com/google/uuid"
import "go.uber.org/zap"

// MetricSink receives one record per metric per epoch.
type MetricSink interface {
	Emit(name string, value float64)
}

// ScalarSink receives the same values as a tagged timeseries when a
// scalar log is enabled. The default is a no-op.
type ScalarSink interface {
	Add(tag string, value float64, step int)
}

// NewZapSink emits metrics as structured zap records shaped
// {"metric": <name>, "value": <float>}, tagged with a fresh run id.
func NewZapSink(logger *zap.Logger) MetricSink {
	return &zapSink{logger: logger, run: uuid.NewString()}
}

type zapSink struct {
	logger *zap.Logger
	run    string
}

func (s *zapSink) Emit(name string, value float64) {
	s.logger.Info("metric",
		zap.String("metric", name),
		zap.Float64("value", value),
		zap.String("run", s.run))
}

// NopScalars discards scalar timeseries values.
type NopScalars struct{}

// Add discards the value.
func (NopScalars) Add(string, float64, int) {}

// TSVScalars appends "tag<TAB>value<TAB>step" lines to a writer. It is
// the file-based stand-in for an external scalar dashboard.
type TSVScalars struct {
	W io.Writer
}

// Add writes one timeseries point. Write failures are swallowed: the
// scalar log is advisory and must never abort a run.
func (t TSVScalars) Add(tag string, value float64, step int) {
	fmt.Fprintf(t.W, "%s\t%v\t%d\n", tag, value, step)
}
