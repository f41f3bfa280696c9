// Package writer persists generated modules without ever overwriting an
// output a human may already be working on.
package writer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

// Outcome reports what Write did.
type Outcome int

const (
	Skipped Outcome = iota
	Written
	WouldWrite
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case WouldWrite:
		return "would_write"
	default:
		return "skipped"
	}
}

// Writer writes new outputs under the needs-review prefix.
type Writer struct {
	dir      string
	naming   outputstate.Naming
	resolver outputstate.Resolver
	dryRun   bool
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer)

// WithDryRun reports what would be written without touching disk or state.
func WithDryRun(dryRun bool) Option {
	return func(w *Writer) { w.dryRun = dryRun }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Writer for the output directory dir.
func New(dir string, naming outputstate.Naming, resolver outputstate.Resolver, opts ...Option) *Writer {
	w := &Writer{
		dir:      dir,
		naming:   naming,
		resolver: resolver,
		logger:   slog.Default(),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) lock(id string) func() {
	w.mu.Lock()
	l, ok := w.locks[id]
	if !ok {
		l = &sync.Mutex{}
		w.locks[id] = l
	}
	w.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Exists reports whether id already has output in any state.
func (w *Writer) Exists(ctx context.Context, id string) (bool, error) {
	_, found, err := w.resolver.Lookup(ctx, id)
	return found, err
}

// Write stores content for id unless id already has output in any state,
// in which case it returns Skipped and no error.
func (w *Writer) Write(ctx context.Context, id string, content []byte) (Outcome, error) {
	unlock := w.lock(id)
	defer unlock()

	rec, found, err := w.resolver.Lookup(ctx, id)
	if err != nil {
		return Skipped, err
	}
	if found {
		w.logger.Debug("Output exists, skipping",
			logfields.ExampleID(id),
			logfields.State(rec.State.String()))
		return Skipped, nil
	}

	path := filepath.Join(w.dir, w.naming.FileName(id, outputstate.NeedsReview))
	if w.dryRun {
		w.logger.Info("Would write output", logfields.ExampleID(id), logfields.Path(path))
		return WouldWrite, nil
	}

	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return Skipped, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			AtPath(w.dir).
			Build()
	}

	// O_EXCL guards against a file that appeared outside the resolver's view.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		w.logger.Debug("Output file already present, skipping", logfields.ExampleID(id), logfields.Path(path))
		return Skipped, nil
	}
	if err != nil {
		return Skipped, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output").
			AtPath(path).
			Build()
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return Skipped, errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			AtPath(path).
			Build()
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return Skipped, errors.WrapError(err, errors.CategoryFileSystem, "failed to close output").
			AtPath(path).
			Build()
	}

	err = w.resolver.Put(ctx, outputstate.Record{
		ID:          id,
		State:       outputstate.NeedsReview,
		File:        path,
		Fingerprint: outputstate.Fingerprint(id, content),
	})
	if err != nil {
		return Written, err
	}

	w.logger.Info("Wrote output", logfields.ExampleID(id), logfields.Path(path))
	return Written, nil
}
