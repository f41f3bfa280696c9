package pipeline

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/logfields"
	"git.home.luguber.info/inful/corpusgen/internal/observability"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

// Transition moves id's output to state target, renaming the file to the
// matching prefix and recording the new state. Moving backwards in the
// lifecycle is rejected.
func (p *Pipeline) Transition(ctx context.Context, id string, target outputstate.State) error {
	ctx = observability.WithExampleID(ctx, id)
	logger := observability.Logger(ctx, p.logger)

	rec, found, err := p.resolver.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errors.NewError(errors.CategoryNotFound, "example has no output").
			ForExample(id).
			Build()
	}
	if rec.State == target {
		logger.Info("Already in requested state", logfields.State(target.String()))
		return nil
	}
	if !rec.State.CanTransition(target) {
		return errors.StateError("refusing backwards state transition").
			ForExample(id).
			WithContext("from", rec.State.String()).
			WithContext("to", target.String()).
			Build()
	}

	from := p.OutputPath(id, rec.State)
	to := p.OutputPath(id, target)
	if _, err := os.Stat(from); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "output file missing").
			ForExample(id).
			AtPath(from).
			Build()
	}
	if _, err := os.Stat(to); err == nil {
		return errors.StateError("target output already exists").
			ForExample(id).
			AtPath(to).
			Build()
	}

	if p.dryRun {
		logger.Info("Would move output", logfields.Path(from), slog.String("target", to))
		return nil
	}

	if err := p.files.Move(from, to); err != nil {
		return err
	}
	content, err := os.ReadFile(to)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read moved output").
			AtPath(to).
			Build()
	}
	err = p.resolver.Put(ctx, outputstate.Record{
		ID:          id,
		State:       target,
		File:        to,
		Fingerprint: outputstate.Fingerprint(id, content),
	})
	if err != nil {
		if rbErr := p.files.Move(to, from); rbErr != nil {
			logger.Error("Failed to roll back rename", logfields.Path(to), logfields.Error(rbErr))
		}
		return err
	}

	logger.Info("Output moved",
		logfields.State(target.String()),
		slog.String("from_state", rec.State.String()),
		logfields.Path(to))
	return nil
}

// Promote marks id's reviewed output as finalized.
func (p *Pipeline) Promote(ctx context.Context, id string) error {
	return p.Transition(ctx, id, outputstate.Finalized)
}
