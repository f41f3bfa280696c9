package outputstate

import (
	"context"
	"sort"
)

// Importer is a resolver that keeps its own records and can be brought back
// in line with the output directory: ImportUnknown records ids it has never
// seen, Delete forgets an id whose output is gone.
type Importer interface {
	ImportUnknown(ctx context.Context, entries map[string]Entry) (int, error)
	Delete(ctx context.Context, id string) error
}

// Layered consults Primary first and Fallback only for ids Primary does not
// know. Writes go to Primary.
type Layered struct {
	Primary  Resolver
	Fallback Resolver
}

// Lookup returns Primary's record when present, else Fallback's.
func (l *Layered) Lookup(ctx context.Context, id string) (Record, bool, error) {
	rec, found, err := l.Primary.Lookup(ctx, id)
	if err != nil || found {
		return rec, found, err
	}
	return l.Fallback.Lookup(ctx, id)
}

// Put records rec in Primary.
func (l *Layered) Put(ctx context.Context, rec Record) error {
	return l.Primary.Put(ctx, rec)
}

// List merges both layers; Primary wins per id.
func (l *Layered) List(ctx context.Context) ([]Record, error) {
	primary, err := l.Primary.List(ctx)
	if err != nil {
		return nil, err
	}
	fallback, err := l.Fallback.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Record, len(primary)+len(fallback))
	for _, rec := range fallback {
		byID[rec.ID] = rec
	}
	for _, rec := range primary {
		byID[rec.ID] = rec
	}
	out := make([]Record, 0, len(byID))
	for _, rec := range byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ImportUnknown forwards to Primary when it can import.
func (l *Layered) ImportUnknown(ctx context.Context, entries map[string]Entry) (int, error) {
	imp, ok := l.Primary.(Importer)
	if !ok {
		return 0, nil
	}
	return imp.ImportUnknown(ctx, entries)
}

// Delete forwards to Primary when it can import.
func (l *Layered) Delete(ctx context.Context, id string) error {
	imp, ok := l.Primary.(Importer)
	if !ok {
		return nil
	}
	return imp.Delete(ctx, id)
}
