package pipeline

import (
	"context"

	"git.home.luguber.info/inful/corpusgen/internal/metrics"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
	"git.home.luguber.info/inful/corpusgen/internal/prune"
)

// prune removes raw sources whose output has been promoted.
func (p *Pipeline) prune(ctx context.Context, report *Report) error {
	c := &prune.Collector{
		Sources:  p.cfg.Paths.Sources,
		Glob:     p.cfg.Paths.SourceGlob,
		Naming:   p.naming,
		Resolver: p.resolver,
		Files:    p.files,
		DryRun:   p.dryRun,
		Logger:   observability.Logger(ctx, p.logger),
	}
	res, err := c.Collect(ctx)
	report.Pruned = res.Pruned
	for range res.Pruned {
		p.recorder.IncExampleResult(string(StagePrune), metrics.ResultPruned)
	}
	return err
}
