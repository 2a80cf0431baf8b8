package metrics

import "time"

// ResultLabel enumerates collection result categories.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNotFound ResultLabel = "not_found"
	ResultError    ResultLabel = "error"
)

// Recorder defines the observability hooks of a documentation build.
type Recorder interface {
	IncCollection(handler string, result ResultLabel)
	ObserveRenderDuration(handler string, d time.Duration)
	IncPagesBuilt()
	ObserveBuildDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncCollection(string, ResultLabel)           {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) IncPagesBuilt()                              {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
