package pipeline

import (
	"bytes"
	"context"
	"os"

	"git.home.luguber.info/inful/corpusgen/internal/index"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metrics"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
)

// index regenerates the re-export listing and creates missing type stubs.
func (p *Pipeline) index(ctx context.Context, report *Report) error {
	records, err := p.Corpus(ctx)
	if err != nil {
		return err
	}
	entries := make([]index.Entry, len(records))
	ids := make([]string, len(records))
	for i, rec := range records {
		entries[i] = index.Entry{ID: rec.ID, File: p.OutputPath(rec.ID, rec.State)}
		ids[i] = rec.ID
	}
	report.Corpus = ids
	p.recorder.SetCorpusSize(len(ids))

	logger := observability.Logger(ctx, p.logger)
	indexPath := p.cfg.Paths.Index
	if p.dryRun {
		data, err := index.Render(indexPath, entries)
		if err != nil {
			return err
		}
		current, readErr := os.ReadFile(indexPath)
		report.IndexChanged = readErr != nil || !bytes.Equal(current, data)
	} else {
		changed, err := index.Write(indexPath, entries)
		if err != nil {
			return err
		}
		report.IndexChanged = changed
	}
	if report.IndexChanged {
		logger.Info("Index updated", logfields.Path(indexPath), logfields.Count(len(entries)))
	}

	created, err := index.EnsureStubs(p.cfg.Paths.Stubs, ids, p.dryRun)
	report.StubsCreated = created
	for range created {
		p.recorder.IncExampleResult(string(StageIndex), metrics.ResultCreated)
	}
	if len(created) > 0 {
		logger.Info("Created type stubs", logfields.Path(p.cfg.Paths.Stubs), logfields.Count(len(created)))
	}
	return err
}
