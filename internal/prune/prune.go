// Package prune removes raw example sources whose output has already been
// promoted past review.
package prune

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
	"git.home.luguber.info/inful/corpusgen/internal/sfc"
	"git.home.luguber.info/inful/corpusgen/internal/vcs"
)

// Result lists what a collection pass did.
type Result struct {
	Pruned []string
	Kept   int
}

// Collector deletes stale raw sources.
type Collector struct {
	Sources  string
	Glob     string
	Naming   outputstate.Naming
	Resolver outputstate.Resolver
	Files    vcs.FileOps
	DryRun   bool
	Logger   *slog.Logger
}

// Promoted reports whether s means the raw source is no longer needed.
func Promoted(s outputstate.State) bool {
	return s == outputstate.Finalized || s == outputstate.Todo || s == outputstate.Deprecated
}

// Collect removes each raw source whose marker-stripped id has a promoted
// output. Removal failures are logged and the pass continues.
func (c *Collector) Collect(ctx context.Context) (Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files := c.Files
	if files == nil {
		files = vcs.OS{}
	}

	paths, err := sfc.List(c.Sources, c.Glob)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id := c.Naming.StripMarkers(sfc.IDFromPath(path))
		rec, found, err := c.Resolver.Lookup(ctx, id)
		if err != nil {
			return res, err
		}
		if !found || !Promoted(rec.State) {
			res.Kept++
			continue
		}

		if c.DryRun {
			logger.Info("Would prune raw source", logfields.ExampleID(id), logfields.Path(path))
			res.Pruned = append(res.Pruned, path)
			continue
		}
		if err := files.Remove(path); err != nil {
			logger.Error("Failed to prune raw source", logfields.ExampleID(id), logfields.Path(path), logfields.Error(err))
			res.Kept++
			continue
		}
		logger.Info("Pruned raw source", logfields.ExampleID(id), logfields.State(rec.State.String()), logfields.Path(path))
		res.Pruned = append(res.Pruned, path)
	}
	return res, nil
}
