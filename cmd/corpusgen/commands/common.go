package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metrics"
	"git.home.luguber.info/inful/corpusgen/internal/pipeline"
	"git.home.luguber.info/inful/corpusgen/internal/vcs"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"corpusgen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
	Generate  GenerateCmd  `cmd:"" help:"Transform raw sources into generated modules"`
	Reconcile ReconcileCmd `cmd:"" help:"Reconcile the metadata store with the corpus"`
	Index     IndexCmd     `cmd:"" help:"Regenerate the module index and create missing type stubs"`
	Normalize NormalizeCmd `cmd:"" help:"Reshape info blocks of modules awaiting review"`
	Prune     PruneCmd     `cmd:"" help:"Remove raw sources whose output has been promoted"`
	Build     BuildCmd     `cmd:"" help:"Generate, reconcile metadata and refresh the index"`
	Status    StatusCmd    `cmd:"" help:"List outputs with their state"`
	Promote   PromoteCmd   `cmd:"" help:"Mark a reviewed output as finalized"`
	Mark      MarkCmd      `cmd:"" help:"Move an output to another state"`
	Watch     WatchCmd     `cmd:"" help:"Rebuild on source changes and on an interval"`
	Ver       VersionCmd   `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// session is a loaded configuration with a pipeline wired to it.
type session struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	recorder *metrics.PrometheusRecorder
	logger   *slog.Logger
	close    func() error
}

type sessionOptions struct {
	dryRun bool
	git    bool
}

func openSession(g *Global, root *CLI, opts sessionOptions) (*session, error) {
	logger := slog.Default()
	if g != nil && g.Logger != nil {
		logger = g.Logger
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}

	resolver, closeResolver, err := pipeline.OpenResolver(cfg)
	if err != nil {
		return nil, err
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithDryRun(opts.dryRun)}

	s := &session{cfg: cfg, logger: logger, close: closeResolver}
	if cfg.Metrics.Textfile != "" {
		s.recorder = metrics.NewPrometheusRecorder(nil)
		pipeOpts = append(pipeOpts, pipeline.WithRecorder(s.recorder))
	}
	if opts.git {
		repo, err := vcs.Open(cfg.Paths.Output)
		if err != nil {
			_ = closeResolver()
			return nil, err
		}
		pipeOpts = append(pipeOpts, pipeline.WithFileOps(repo))
	}

	s.pipeline = pipeline.New(cfg, resolver, pipeOpts...)
	return s, nil
}

// flushMetrics writes the metrics textfile when one is configured.
func (s *session) flushMetrics() {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		s.logger.Warn("Failed to write metrics textfile", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
	}
}

func (s *session) Close() {
	s.flushMetrics()
	if err := s.close(); err != nil {
		s.logger.Warn("Failed to close state store", logfields.Error(err))
	}
}

// run executes stages and turns per-example failures into an error when
// strict is set.
func (s *session) run(ctx context.Context, strict bool, stages ...pipeline.Stage) (*pipeline.Report, error) {
	report, err := s.pipeline.Run(ctx, stages...)
	if err != nil {
		return report, err
	}
	if strict && len(report.Failures) > 0 {
		return report, errors.ValidationError("some examples failed to transform").
			WithContext("failed", len(report.Failures)).
			Build()
	}
	return report, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
