package metrics

import "time"

// Outcome labels for build results.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder receives sitemap build observations. Implementations may forward to
// Prometheus; NoopRecorder is the default when metrics are not configured.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	SetItemCount(n int)
	IncGeneratorSkip(reason string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) SetItemCount(int)                   {}
func (NoopRecorder) IncGeneratorSkip(string)            {}
