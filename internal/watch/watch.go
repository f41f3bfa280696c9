// Package watch re-runs the corpus build when raw sources or outputs change
// and on a fixed interval.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
)

// Trigger reasons passed to the Runner.
const (
	ReasonStartup  = "startup"
	ReasonChange   = "change"
	ReasonInterval = "interval"
)

// Runner performs one build.
type Runner func(ctx context.Context, reason string) error

// Target is a directory and the file names in it that matter.
type Target struct {
	Dir  string
	Glob string
}

// Config configures a Watcher.
type Config struct {
	Targets  []Target
	Debounce time.Duration
	Interval time.Duration
}

// Watcher serialises builds triggered by file events and by a schedule.
type Watcher struct {
	cfg     Config
	run     Runner
	logger  *slog.Logger
	trigger chan string
}

// New creates a Watcher.
func New(cfg Config, run Runner, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	return &Watcher{
		cfg:     cfg,
		run:     run,
		logger:  logger,
		trigger: make(chan string, 1),
	}
}

// Run builds once, then again after each debounced burst of relevant file
// events and on every interval tick, until ctx is done. Build errors are
// logged; only setup errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to create file watcher").Build()
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	for _, t := range w.cfg.Targets {
		if err := fsw.Add(t.Dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
				AtPath(t.Dir).
				Build()
		}
		w.logger.Info("Watching directory", logfields.Path(t.Dir), slog.String("glob", t.Glob))
	}

	if w.cfg.Interval > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to create scheduler").Build()
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(w.cfg.Interval),
			gocron.NewTask(w.request, ReasonInterval),
			gocron.WithName("corpusgen-interval-build"),
		)
		if err != nil {
			_ = scheduler.Shutdown()
			return errors.WrapError(err, errors.CategoryInternal, "failed to schedule periodic build").Build()
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				w.logger.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	w.build(ctx, ReasonStartup)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.cfg.Debounce)
			timerC = timer.C
		case <-timerC:
			timer, timerC = nil, nil
			w.build(ctx, ReasonChange)
		case reason := <-w.trigger:
			w.build(ctx, reason)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

// request asks the loop for a build; a pending request absorbs new ones.
func (w *Watcher) request(reason string) {
	select {
	case w.trigger <- reason:
	default:
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	dir := filepath.Clean(filepath.Dir(event.Name))
	base := filepath.Base(event.Name)
	for _, t := range w.cfg.Targets {
		if filepath.Clean(t.Dir) != dir {
			continue
		}
		if t.Glob == "" {
			return true
		}
		if ok, _ := filepath.Match(t.Glob, base); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) build(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	w.logger.Info("Build triggered", slog.String("reason", reason))
	if err := w.run(ctx, reason); err != nil {
		w.logger.Error("Build failed", slog.String("reason", reason), logfields.Error(err))
		return
	}
	w.logger.Debug("Build complete", slog.String("reason", reason),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}
