package commands

import (
	"fmt"

	"git.home.luguber.info/inful/corpusgen/internal/pipeline"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	DryRun bool `name:"dry-run" help:"Report what would be written without writing"`
	Strict bool `help:"Exit non-zero when any example fails to transform"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	return runStages(g, root, sessionOptions{dryRun: c.DryRun}, c.Strict, pipeline.StageGenerate)
}

// ReconcileCmd implements the 'reconcile' command.
type ReconcileCmd struct{}

func (c *ReconcileCmd) Run(g *Global, root *CLI) error {
	return runStages(g, root, sessionOptions{}, false, pipeline.StageReconcile)
}

// IndexCmd implements the 'index' command.
type IndexCmd struct{}

func (c *IndexCmd) Run(g *Global, root *CLI) error {
	return runStages(g, root, sessionOptions{}, false, pipeline.StageIndex)
}

// NormalizeCmd implements the 'normalize' command.
type NormalizeCmd struct {
	DryRun bool `name:"dry-run" help:"Report what would be rewritten without writing"`
}

func (c *NormalizeCmd) Run(g *Global, root *CLI) error {
	return runStages(g, root, sessionOptions{dryRun: c.DryRun}, false, pipeline.StageNormalize)
}

// PruneCmd implements the 'prune' command.
type PruneCmd struct {
	DryRun bool `name:"dry-run" help:"Report what would be removed without removing"`
	Git    bool `help:"Remove tracked sources through the git index"`
}

func (c *PruneCmd) Run(g *Global, root *CLI) error {
	return runStages(g, root, sessionOptions{dryRun: c.DryRun, git: c.Git}, false, pipeline.StagePrune)
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	DryRun bool `name:"dry-run" help:"Report what would change without writing"`
	Strict bool `help:"Exit non-zero when any example fails to transform"`
}

func (c *BuildCmd) Run(g *Global, root *CLI) error {
	return runStages(g, root, sessionOptions{dryRun: c.DryRun}, c.Strict, pipeline.BuildStages...)
}

func runStages(g *Global, root *CLI, opts sessionOptions, strict bool, stages ...pipeline.Stage) error {
	s, err := openSession(g, root, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	report, err := s.run(ctx, strict, stages...)
	if err != nil {
		return err
	}
	printReport(report, opts.dryRun)
	return nil
}

func printReport(r *pipeline.Report, dryRun bool) {
	verb := "written"
	if dryRun {
		verb = "would write"
	}
	fmt.Printf("run %s: %s\n", r.RunID, r.Outcome)
	if len(r.Written) > 0 || r.Skipped > 0 || len(r.Failures) > 0 {
		fmt.Printf("  modules: %d %s, %d skipped, %d failed\n", len(r.Written), verb, r.Skipped, len(r.Failures))
	}
	for _, f := range r.Failures {
		fmt.Printf("    %s: %v\n", f.ID, f.Err)
	}
	if len(r.Corpus) > 0 {
		fmt.Printf("  corpus: %d ids\n", len(r.Corpus))
	}
	if len(r.MetadataDropped) > 0 {
		fmt.Printf("  metadata: dropped %d stale ids\n", len(r.MetadataDropped))
	}
	if len(r.StubsCreated) > 0 {
		fmt.Printf("  stubs: %d created\n", len(r.StubsCreated))
	}
	if len(r.Fixed) > 0 || len(r.Unfixed) > 0 {
		fmt.Printf("  normalize: %d fixed, %d unfixed\n", len(r.Fixed), len(r.Unfixed))
	}
	for _, u := range r.Unfixed {
		fmt.Printf("    %s: %s\n", u.ID, u.Reason)
	}
	if len(r.Pruned) > 0 {
		fmt.Printf("  pruned: %d sources\n", len(r.Pruned))
	}
}
