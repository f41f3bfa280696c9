package metrics

import "time"

// ResultLabel enumerates per-example outcomes for counters.
type ResultLabel string

const (
	ResultWritten    ResultLabel = "written"
	ResultWouldWrite ResultLabel = "would_write"
	ResultSkipped    ResultLabel = "skipped"
	ResultFailed     ResultLabel = "failed"
	ResultFixed      ResultLabel = "fixed"
	ResultUnfixed    ResultLabel = "unfixed"
	ResultPruned     ResultLabel = "pruned"
	ResultCreated    ResultLabel = "created"
)

// RunOutcomeLabel is the final status of one pipeline run.
type RunOutcomeLabel string

const (
	RunSuccess  RunOutcomeLabel = "success"
	RunPartial  RunOutcomeLabel = "partial"
	RunFailed   RunOutcomeLabel = "failed"
	RunCanceled RunOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for pipeline runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncExampleResult(stage string, result ResultLabel)
	IncRunOutcome(outcome RunOutcomeLabel)
	SetCorpusSize(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncExampleResult(string, ResultLabel)       {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)              {}
func (NoopRecorder) SetCorpusSize(int)                          {}
