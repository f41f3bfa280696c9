package pipeline

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metrics"
)

// Failure is one example that could not be processed.
type Failure struct {
	ID    string
	Path  string
	Stage Stage
	Err   error
}

// Unfixed is one module the normalizer left for manual review.
type Unfixed struct {
	ID     string
	Path   string
	Reason string
}

// Report accumulates the outcome of a run.
type Report struct {
	mu sync.Mutex

	RunID   string
	Start   time.Time
	End     time.Time
	Outcome metrics.RunOutcomeLabel

	Imported  int
	Advanced  []string
	Forgotten []string

	Written  []string
	Skipped  int
	Failures []Failure

	Corpus          []string
	MetadataDropped []string
	MetadataChanged bool

	IndexChanged bool
	StubsCreated []string

	Fixed   []string
	Unfixed []Unfixed

	Pruned []string
}

func newReport(runID string) *Report {
	return &Report{RunID: runID, Start: time.Now()}
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

func (r *Report) addWritten(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written = append(r.Written, id)
}

func (r *Report) addSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
}

func (r *Report) addFailure(f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, f)
}

// sortLists orders the per-id lists filled concurrently.
func (r *Report) sortLists() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Strings(r.Written)
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].ID < r.Failures[j].ID })
}

// Log writes the run summary.
func (r *Report) Log(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.Failures {
		logger.Warn("Example failed",
			logfields.ExampleID(f.ID),
			logfields.Stage(string(f.Stage)),
			logfields.Path(f.Path),
			logfields.Error(f.Err))
	}
	for _, u := range r.Unfixed {
		logger.Warn("Info needs manual review",
			logfields.ExampleID(u.ID),
			logfields.Path(u.Path),
			slog.String("reason", u.Reason))
	}

	logger.Info("Run finished",
		slog.String("outcome", string(r.Outcome)),
		logfields.DurationMS(float64(r.Duration().Microseconds())/1000),
		slog.Int("imported", r.Imported),
		slog.Int("advanced", len(r.Advanced)),
		slog.Int("forgotten", len(r.Forgotten)),
		slog.Int("written", len(r.Written)),
		slog.Int("skipped", r.Skipped),
		slog.Int("failed", len(r.Failures)),
		slog.Int("corpus", len(r.Corpus)),
		slog.Int("metadata_dropped", len(r.MetadataDropped)),
		slog.Bool("index_changed", r.IndexChanged),
		slog.Int("stubs_created", len(r.StubsCreated)),
		slog.Int("fixed", len(r.Fixed)),
		slog.Int("unfixed", len(r.Unfixed)),
		slog.Int("pruned", len(r.Pruned)))
}
