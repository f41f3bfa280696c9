package pipeline

import (
	"context"
	"os"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

// StatusEntry describes one id's output.
type StatusEntry struct {
	ID      string
	State   outputstate.State
	Path    string
	Present bool
	// Edited is true when the file no longer matches what was last recorded.
	Edited bool
}

// Status lists every known output with its state and whether it was edited
// since the tool last wrote or moved it.
func (p *Pipeline) Status(ctx context.Context) ([]StatusEntry, error) {
	records, err := p.resolver.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]StatusEntry, 0, len(records))
	for _, rec := range records {
		entry := StatusEntry{ID: rec.ID, State: rec.State, Path: p.OutputPath(rec.ID, rec.State)}
		content, err := os.ReadFile(entry.Path)
		switch {
		case err == nil:
			entry.Present = true
			entry.Edited = rec.Fingerprint != "" && outputstate.Fingerprint(rec.ID, content) != rec.Fingerprint
		case !os.IsNotExist(err):
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read output").
				AtPath(entry.Path).
				Build()
		}
		out = append(out, entry)
	}
	return out, nil
}
