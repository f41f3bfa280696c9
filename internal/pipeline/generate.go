package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/jsparse"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metrics"
	"git.home.luguber.info/inful/corpusgen/internal/module"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
	"git.home.luguber.info/inful/corpusgen/internal/sfc"
	"git.home.luguber.info/inful/corpusgen/internal/writer"
)

func (p *Pipeline) generate(ctx context.Context, report *Report) error {
	paths, err := sfc.List(p.cfg.Paths.Sources, p.cfg.Paths.SourceGlob)
	if err != nil {
		return err
	}
	observability.Logger(ctx, p.logger).Info("Generating modules", logfields.Count(len(paths)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.Workers)
	for _, path := range paths {
		g.Go(func() error {
			return p.generateOne(gctx, path, report)
		})
	}
	err = g.Wait()
	report.sortLists()
	return err
}

// generateOne processes one raw source. Parse and transform failures are
// recorded on the report; every other error aborts the batch.
func (p *Pipeline) generateOne(ctx context.Context, path string, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := p.naming.StripMarkers(sfc.IDFromPath(path))
	ctx = observability.WithExampleID(ctx, id)
	logger := observability.Logger(ctx, p.logger)

	exists, err := p.writer.Exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		report.addSkipped()
		p.recorder.IncExampleResult(string(StageGenerate), metrics.ResultSkipped)
		logger.Debug("Output exists, skipping")
		return nil
	}

	content, err := p.render(ctx, id, path)
	if err != nil {
		if !errors.IsExampleFailure(err) {
			return err
		}
		report.addFailure(Failure{ID: id, Path: path, Stage: StageGenerate, Err: err})
		p.recorder.IncExampleResult(string(StageGenerate), metrics.ResultFailed)
		logger.Error("Example failed", logfields.Path(path), logfields.Error(err))
		return nil
	}

	outcome, err := p.writer.Write(ctx, id, content)
	if err != nil {
		return err
	}
	switch outcome {
	case writer.Written:
		report.addWritten(id)
		p.recorder.IncExampleResult(string(StageGenerate), metrics.ResultWritten)
	case writer.WouldWrite:
		report.addWritten(id)
		p.recorder.IncExampleResult(string(StageGenerate), metrics.ResultWouldWrite)
	default:
		report.addSkipped()
		p.recorder.IncExampleResult(string(StageGenerate), metrics.ResultSkipped)
	}
	return nil
}

// render reads, extracts and transforms one raw source into module text.
func (p *Pipeline) render(ctx context.Context, id, path string) ([]byte, error) {
	src, err := sfc.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := p.extractor.Extract(src)
	if err != nil {
		return nil, err
	}
	res, err := p.transformer.Transform(ctx, src.Script, jsparse.DialectFor(src.ScriptLang))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.ForExample(id)
		}
		return nil, err
	}
	return module.Render(module.Module{
		ID:          id,
		ImportLines: res.ImportLines,
		Loaders:     res.LoaderArrayText,
		Info:        info,
		Init:        res.InitExpression,
	})
}
