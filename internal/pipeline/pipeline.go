package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/extract"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metrics"
	"git.home.luguber.info/inful/corpusgen/internal/normalize"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
	"git.home.luguber.info/inful/corpusgen/internal/script"
	"git.home.luguber.info/inful/corpusgen/internal/vcs"
	"git.home.luguber.info/inful/corpusgen/internal/writer"
)

// Stage names one pipeline step.
type Stage string

const (
	StageSync      Stage = "sync"
	StageGenerate  Stage = "generate"
	StageReconcile Stage = "reconcile"
	StageIndex     Stage = "index"
	StageNormalize Stage = "normalize"
	StagePrune     Stage = "prune"
)

// BuildStages is the default build: generate, then refresh the derived
// artifacts from the resulting corpus.
var BuildStages = []Stage{StageGenerate, StageReconcile, StageIndex}

// Pipeline wires the corpus components together.
type Pipeline struct {
	cfg         *config.Config
	naming      outputstate.Naming
	resolver    outputstate.Resolver
	extractor   *extract.Extractor
	transformer *script.Transformer
	normalizer  *normalize.Normalizer
	writer      *writer.Writer
	files       vcs.FileOps
	recorder    metrics.Recorder
	logger      *slog.Logger
	dryRun      bool
	newRunID    func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithDryRun makes every stage report instead of writing.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// WithFileOps sets how outputs are renamed and sources removed.
func WithFileOps(f vcs.FileOps) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.files = f
		}
	}
}

// New creates a Pipeline.
func New(cfg *config.Config, resolver outputstate.Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		naming:   outputstate.NewNaming(cfg.Prefixes, cfg.Paths.OutputExt),
		resolver: resolver,
		files:    vcs.OS{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.extractor = extract.New(cfg.Markup, p.logger)
	p.transformer = script.New(cfg.Script, p.logger)
	p.normalizer = normalize.New(cfg.Normalize, p.logger)
	p.writer = writer.New(cfg.Paths.Output, p.naming, resolver,
		writer.WithDryRun(p.dryRun), writer.WithLogger(p.logger))
	return p
}

// Naming returns the output naming convention in use.
func (p *Pipeline) Naming() outputstate.Naming { return p.naming }

// OutputPath returns the output file for id in state s.
func (p *Pipeline) OutputPath(id string, s outputstate.State) string {
	return filepath.Join(p.cfg.Paths.Output, p.naming.FileName(id, s))
}

// Run executes stages in order. When the resolver can import, on-disk
// outputs it has never seen are recorded first.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) (*Report, error) {
	report := newReport(p.newRunID())
	ctx = observability.WithRunID(ctx, report.RunID)
	logger := observability.Logger(ctx, p.logger)
	logger.Info("Starting run", slog.Any("stages", stages), slog.Bool("dry_run", p.dryRun))

	if _, ok := p.resolver.(outputstate.Importer); ok && !p.dryRun {
		stages = append([]Stage{StageSync}, stages...)
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, report, metrics.RunCanceled, err)
		}
		stageCtx := observability.WithStage(ctx, string(stage))
		start := time.Now()
		err := p.runStage(stageCtx, stage, report)
		p.recorder.ObserveStageDuration(string(stage), time.Since(start))
		if err != nil {
			observability.Logger(stageCtx, p.logger).Error("Stage failed", logfields.Error(err))
			outcome := metrics.RunFailed
			if ctx.Err() != nil {
				outcome = metrics.RunCanceled
			}
			return p.finish(ctx, report, outcome, err)
		}
	}

	outcome := metrics.RunSuccess
	if len(report.Failures) > 0 {
		outcome = metrics.RunPartial
	}
	return p.finish(ctx, report, outcome, nil)
}

func (p *Pipeline) finish(ctx context.Context, report *Report, outcome metrics.RunOutcomeLabel, err error) (*Report, error) {
	report.End = time.Now()
	report.Outcome = outcome
	p.recorder.IncRunOutcome(outcome)
	p.recorder.ObserveRunDuration(report.Duration())
	report.Log(observability.Logger(ctx, p.logger))
	return report, err
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, report *Report) error {
	switch stage {
	case StageSync:
		return p.sync(ctx, report)
	case StageGenerate:
		return p.generate(ctx, report)
	case StageReconcile:
		return p.reconcile(ctx, report)
	case StageIndex:
		return p.index(ctx, report)
	case StageNormalize:
		return p.normalize(ctx, report)
	case StagePrune:
		return p.prune(ctx, report)
	default:
		return errors.InternalError("unknown stage").WithContext("stage", string(stage)).Build()
	}
}

// sync brings the ledger in line with the output directory. Ids it has never
// seen are imported. A known id whose file moved to a later state by hand
// follows the file, and a known id with no file left is forgotten. A file
// that sits in an earlier state than recorded is reported and left alone.
func (p *Pipeline) sync(ctx context.Context, report *Report) error {
	importer, ok := p.resolver.(outputstate.Importer)
	if !ok {
		return nil
	}
	logger := observability.Logger(ctx, p.logger)

	entries, err := outputstate.Scan(p.cfg.Paths.Output, p.naming)
	if err != nil {
		return err
	}
	n, err := importer.ImportUnknown(ctx, entries)
	if err != nil {
		return errors.WrapError(err, errors.CategoryState, "failed to import output states").Build()
	}
	report.Imported = n
	if n > 0 {
		logger.Info("Imported output states", logfields.Count(n))
	}

	records, err := p.resolver.List(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		entry, onDisk := entries[rec.ID]
		switch {
		case !onDisk:
			if err := importer.Delete(ctx, rec.ID); err != nil {
				return err
			}
			report.Forgotten = append(report.Forgotten, rec.ID)
			logger.Info("Output removed by hand, forgetting id",
				logfields.ExampleID(rec.ID), logfields.State(rec.State.String()))
		case entry.State == rec.State:
		case rec.State.CanTransition(entry.State):
			err := p.resolver.Put(ctx, outputstate.Record{
				ID:          rec.ID,
				State:       entry.State,
				File:        entry.File,
				Fingerprint: rec.Fingerprint,
			})
			if err != nil {
				return err
			}
			report.Advanced = append(report.Advanced, rec.ID)
			logger.Info("Output moved by hand, following",
				logfields.ExampleID(rec.ID),
				slog.String("from_state", rec.State.String()),
				logfields.State(entry.State.String()))
		default:
			logger.Warn("Output file is behind its recorded state; keeping the record",
				logfields.ExampleID(rec.ID),
				logfields.State(rec.State.String()),
				logfields.Path(entry.File))
		}
	}
	return nil
}

// Corpus returns the records whose state places them in the published corpus,
// sorted by id.
func (p *Pipeline) Corpus(ctx context.Context) ([]outputstate.Record, error) {
	records, err := p.resolver.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]outputstate.Record, 0, len(records))
	for _, rec := range records {
		if rec.State.InCorpus() {
			out = append(out, rec)
		}
	}
	return out, nil
}
