package pipeline

import (
	"bytes"
	"context"
	"os"

	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/metadata"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
)

// reconcile rewrites the metadata file so it holds exactly the corpus ids.
func (p *Pipeline) reconcile(ctx context.Context, report *Report) error {
	corpus, err := p.corpusIDs(ctx, report)
	if err != nil {
		return err
	}

	path := p.cfg.Paths.Metadata
	existing, err := metadata.Load(path)
	if err != nil {
		return err
	}
	next := metadata.Reconcile(corpus, existing)
	report.MetadataDropped = metadata.Dropped(existing, next)

	data, err := metadata.Encode(next)
	if err != nil {
		return err
	}
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, data) {
		return nil
	}
	report.MetadataChanged = true

	logger := observability.Logger(ctx, p.logger)
	if p.dryRun {
		logger.Info("Would rewrite metadata", logfields.Path(path), logfields.Count(len(next)))
		return nil
	}
	if err := metadata.Save(path, next); err != nil {
		return err
	}
	logger.Info("Rewrote metadata", logfields.Path(path), logfields.Count(len(next)))
	return nil
}

// corpusIDs lists the corpus ids and records them on the report.
func (p *Pipeline) corpusIDs(ctx context.Context, report *Report) ([]string, error) {
	records, err := p.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	report.Corpus = ids
	p.recorder.SetCorpusSize(len(ids))
	return ids, nil
}
