package outputstate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// Naming encodes states as filename prefixes. Finalized has no prefix.
type Naming struct {
	prefixes map[State]string
	ext      string
}

// NewNaming builds a Naming from configuration.
func NewNaming(p config.PrefixConfig, ext string) Naming {
	return Naming{
		prefixes: map[State]string{
			NeedsReview: p.NeedsReview,
			Todo:        p.Todo,
			Deprecated:  p.Deprecated,
			Finalized:   "",
		},
		ext: ext,
	}
}

// Prefix returns the filename prefix for s.
func (n Naming) Prefix(s State) string { return n.prefixes[s] }

// Ext returns the output file extension.
func (n Naming) Ext() string { return n.ext }

// FileName returns the output file name for id in state s.
func (n Naming) FileName(id string, s State) string {
	return n.prefixes[s] + id + n.ext
}

// ParseFileName infers id and state from an output file name. Names without
// the output extension are rejected.
func (n Naming) ParseFileName(name string) (string, State, bool) {
	if n.ext == "" || !strings.HasSuffix(name, n.ext) {
		return "", Unknown, false
	}
	stem := strings.TrimSuffix(name, n.ext)

	best, bestLen := Finalized, 0
	for _, s := range []State{NeedsReview, Todo, Deprecated} {
		p := n.prefixes[s]
		if p != "" && strings.HasPrefix(stem, p) && len(p) > bestLen {
			best, bestLen = s, len(p)
		}
	}
	id := stem[bestLen:]
	if id == "" {
		return "", Unknown, false
	}
	return id, best, true
}

// StripMarkers removes todo and deprecated prefixes from a raw source id.
func (n Naming) StripMarkers(rawID string) string {
	id := rawID
	for changed := true; changed; {
		changed = false
		for _, s := range []State{Todo, Deprecated} {
			if p := n.prefixes[s]; p != "" && strings.HasPrefix(id, p) && len(id) > len(p) {
				id = strings.TrimPrefix(id, p)
				changed = true
			}
		}
	}
	return id
}

// Entry is one output file found on disk.
type Entry struct {
	ID    string
	State State
	File  string
}

// Scan lists the output directory and infers a state per id. When an id has
// files in several states the furthest lifecycle state wins. A missing
// directory yields no entries.
func Scan(dir string, n Naming) (map[string]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read output directory").
			AtPath(dir).
			Build()
	}

	out := make(map[string]Entry)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, s, ok := n.ParseFileName(e.Name())
		if !ok {
			continue
		}
		if prev, seen := out[id]; seen && prev.State >= s {
			continue
		}
		out[id] = Entry{ID: id, State: s, File: filepath.Join(dir, e.Name())}
	}
	return out, nil
}

// SortedIDs returns the ids of entries whose state satisfies keep.
func SortedIDs(entries map[string]Entry, keep func(State) bool) []string {
	ids := make([]string, 0, len(entries))
	for id, e := range entries {
		if keep == nil || keep(e.State) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
