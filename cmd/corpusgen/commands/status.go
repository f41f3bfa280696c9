package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	Edited bool `help:"Only list outputs changed since they were last recorded"`
}

func (c *StatusCmd) Run(g *Global, root *CLI) error {
	s, err := openSession(g, root, sessionOptions{dryRun: true})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	entries, err := s.pipeline.Status(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATE\tFILE\tNOTE")
	for _, e := range entries {
		note := ""
		switch {
		case !e.Present:
			note = "missing"
		case e.Edited:
			note = "edited"
		}
		if c.Edited && note != "edited" {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.State, e.Path, note)
	}
	return tw.Flush()
}
