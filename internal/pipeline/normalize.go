package pipeline

import (
	"context"
	"os"
	"time"

	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metrics"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

const reasonMissing = "output file missing"

// normalize reshapes the info field of every module still awaiting review.
// Finalized modules belong to their reviewers and are left alone.
func (p *Pipeline) normalize(ctx context.Context, report *Report) error {
	records, err := p.resolver.List(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.State != outputstate.NeedsReview {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		path := p.OutputPath(rec.ID, rec.State)
		exCtx := observability.WithExampleID(ctx, rec.ID)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			report.Unfixed = append(report.Unfixed, Unfixed{ID: rec.ID, Path: path, Reason: reasonMissing})
			p.recorder.IncExampleResult(string(StageNormalize), metrics.ResultUnfixed)
			continue
		}

		res, err := p.normalizer.File(exCtx, path, p.dryRun)
		if err != nil {
			return err
		}
		if !res.Fixed {
			report.Unfixed = append(report.Unfixed, Unfixed{ID: rec.ID, Path: path, Reason: res.Reason})
			p.recorder.IncExampleResult(string(StageNormalize), metrics.ResultUnfixed)
			continue
		}
		report.Fixed = append(report.Fixed, rec.ID)
		p.recorder.IncExampleResult(string(StageNormalize), metrics.ResultFixed)

		if res.Changed && !p.dryRun {
			rec.File = path
			rec.Fingerprint = outputstate.Fingerprint(rec.ID, res.Content)
			rec.UpdatedAt = time.Time{}
			if err := p.resolver.Put(exCtx, rec); err != nil {
				return err
			}
			observability.Logger(exCtx, p.logger).Info("Normalized info", logfields.Path(path))
		}
	}
	return nil
}
