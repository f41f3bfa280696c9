package outputstate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// Record is the authoritative state of one id.
type Record struct {
	ID          string
	State       State
	File        string
	Fingerprint string
	UpdatedAt   time.Time
}

// Resolver answers "does this id already have output, and in what state".
type Resolver interface {
	Lookup(ctx context.Context, id string) (Record, bool, error)
	Put(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
}

// PrefixResolver infers state purely from which prefixed file exists in the
// output directory. Put is a no-op: the file is the record.
type PrefixResolver struct {
	Dir    string
	Naming Naming
}

var probeOrder = []State{Deprecated, Finalized, Todo, NeedsReview}

// Lookup probes each state's file name in turn.
func (r *PrefixResolver) Lookup(_ context.Context, id string) (Record, bool, error) {
	for _, s := range probeOrder {
		path := filepath.Join(r.Dir, r.Naming.FileName(id, s))
		_, err := os.Stat(path)
		if err == nil {
			return Record{ID: id, State: s, File: path}, true, nil
		}
		if !os.IsNotExist(err) {
			return Record{}, false, errors.WrapError(err, errors.CategoryFileSystem, "failed to probe output").
				AtPath(path).
				Build()
		}
	}
	return Record{}, false, nil
}

// Put is a no-op.
func (r *PrefixResolver) Put(context.Context, Record) error { return nil }

// List scans the output directory.
func (r *PrefixResolver) List(context.Context) ([]Record, error) {
	entries, err := Scan(r.Dir, r.Naming)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, Record{ID: e.ID, State: e.State, File: e.File})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
