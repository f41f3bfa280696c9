package commands

import (
	"fmt"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

// PromoteCmd implements the 'promote' command.
type PromoteCmd struct {
	ID     string `arg:"" help:"Example id"`
	Git    bool   `help:"Rename through the git index"`
	DryRun bool   `name:"dry-run" help:"Report the rename without performing it"`
}

func (c *PromoteCmd) Run(g *Global, root *CLI) error {
	return transition(g, root, c.ID, outputstate.Finalized, sessionOptions{dryRun: c.DryRun, git: c.Git})
}

// MarkCmd implements the 'mark' command.
type MarkCmd struct {
	ID     string `arg:"" help:"Example id"`
	State  string `arg:"" help:"Target state (finalized, todo, deprecated)"`
	Git    bool   `help:"Rename through the git index"`
	DryRun bool   `name:"dry-run" help:"Report the rename without performing it"`
}

func (c *MarkCmd) Run(g *Global, root *CLI) error {
	target, err := outputstate.Parse(c.State)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid state").Build()
	}
	if target == outputstate.NeedsReview {
		return errors.ValidationError("state cannot be set by hand").
			WithContext("state", c.State).
			Build()
	}
	return transition(g, root, c.ID, target, sessionOptions{dryRun: c.DryRun, git: c.Git})
}

func transition(g *Global, root *CLI, id string, target outputstate.State, opts sessionOptions) error {
	s, err := openSession(g, root, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := s.pipeline.Transition(ctx, id, target); err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", id, s.pipeline.OutputPath(id, target))
	return nil
}
