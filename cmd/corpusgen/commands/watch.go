package commands

import (
	"context"
	"os"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/pipeline"
	"git.home.luguber.info/inful/corpusgen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Normalize bool `help:"Also run the info-shape fixer after each build"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	s, err := openSession(g, root, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	stages := append([]pipeline.Stage{}, pipeline.BuildStages...)
	if c.Normalize {
		stages = append(stages, pipeline.StageNormalize)
	}

	if err := os.MkdirAll(s.cfg.Paths.Output, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			AtPath(s.cfg.Paths.Output).
			Build()
	}

	cfg := watch.Config{
		Targets: []watch.Target{
			{Dir: s.cfg.Paths.Sources, Glob: s.cfg.Paths.SourceGlob},
			{Dir: s.cfg.Paths.Output, Glob: "*" + s.cfg.Paths.OutputExt},
		},
		Debounce: s.cfg.Watch.Debounce,
		Interval: s.cfg.Watch.Interval,
	}
	runner := func(ctx context.Context, _ string) error {
		_, err := s.pipeline.Run(ctx, stages...)
		s.flushMetrics()
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return watch.New(cfg, runner, s.logger).Run(ctx)
}
