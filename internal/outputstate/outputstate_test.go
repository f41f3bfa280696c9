package outputstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/corpusgen/internal/config"
)

func testNaming() Naming {
	return NewNaming(config.Default().Prefixes, ".js")
}

func TestParse(t *testing.T) {
	for _, s := range All {
		got, err := Parse(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := Parse("Needs-Review")
	require.NoError(t, err)
	assert.Equal(t, NeedsReview, got)

	_, err = Parse("unknown")
	require.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, Unknown.CanTransition(NeedsReview))
	assert.True(t, NeedsReview.CanTransition(Finalized))
	assert.True(t, Todo.CanTransition(Finalized))
	assert.True(t, Finalized.CanTransition(Deprecated))
	assert.True(t, Finalized.CanTransition(Finalized))
	assert.False(t, Finalized.CanTransition(NeedsReview))
	assert.False(t, Finalized.CanTransition(Todo))
	assert.False(t, Deprecated.CanTransition(Finalized))
	assert.False(t, NeedsReview.CanTransition(Unknown))
}

func TestInCorpus(t *testing.T) {
	assert.True(t, Finalized.InCorpus())
	assert.True(t, NeedsReview.InCorpus())
	assert.False(t, Todo.InCorpus())
	assert.False(t, Deprecated.InCorpus())
}

func TestNaming_FileNameRoundTrip(t *testing.T) {
	n := testNaming()
	for _, s := range All {
		name := n.FileName("webgl_box", s)
		id, got, ok := n.ParseFileName(name)
		require.True(t, ok, name)
		assert.Equal(t, "webgl_box", id)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, "_review_a.js", n.FileName("a", NeedsReview))
	assert.Equal(t, "a.js", n.FileName("a", Finalized))

	_, _, ok := n.ParseFileName("a.d.ts")
	assert.False(t, ok)
	_, _, ok = n.ParseFileName("_review_.js")
	assert.False(t, ok)
}

func TestNaming_StripMarkers(t *testing.T) {
	n := testNaming()
	assert.Equal(t, "a", n.StripMarkers("_todo_a"))
	assert.Equal(t, "a", n.StripMarkers("_deprecated_a"))
	assert.Equal(t, "a", n.StripMarkers("_todo__deprecated_a"))
	assert.Equal(t, "_review_a", n.StripMarkers("_review_a"))
	assert.Equal(t, "_todo_", n.StripMarkers("_todo_"))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"_review_a.js", "a.js", "_todo_b.js", "c.js", "index.d.ts"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "_review_d.js"), 0o750))

	entries, err := Scan(dir, testNaming())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Finalized, entries["a"].State)
	assert.Equal(t, Todo, entries["b"].State)
	assert.Equal(t, Finalized, entries["c"].State)

	assert.Equal(t, []string{"a", "c"}, SortedIDs(entries, State.InCorpus))
	assert.Equal(t, []string{"a", "b", "c"}, SortedIDs(entries, nil))
}

func TestScan_MissingDir(t *testing.T) {
	entries, err := Scan(filepath.Join(t.TempDir(), "nope"), testNaming())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrefixResolver(t *testing.T) {
	dir := t.TempDir()
	r := &PrefixResolver{Dir: dir, Naming: testNaming()}
	ctx := t.Context()

	_, found, err := r.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "_deprecated_a.js"), nil, 0o600))
	rec, found, err := r.Lookup(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Deprecated, rec.State)

	require.NoError(t, r.Put(ctx, Record{ID: "z", State: Finalized}))
	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("a", []byte("export default {}\n"))
	assert.NotEmpty(t, a)
	assert.Equal(t, a, Fingerprint("a", []byte("export default {}\n")))
	assert.NotEqual(t, a, Fingerprint("b", []byte("export default {}\n")))
	assert.NotEqual(t, a, Fingerprint("a", []byte("export default { x }\n")))
}

type memResolver struct{ recs map[string]Record }

func (m *memResolver) Lookup(_ context.Context, id string) (Record, bool, error) {
	rec, ok := m.recs[id]
	return rec, ok, nil
}

func (m *memResolver) Put(_ context.Context, rec Record) error {
	m.recs[rec.ID] = rec
	return nil
}

func (m *memResolver) List(context.Context) ([]Record, error) {
	var out []Record
	for _, rec := range m.recs {
		out = append(out, rec)
	}
	return out, nil
}

func TestLayered(t *testing.T) {
	primary := &memResolver{recs: map[string]Record{"a": {ID: "a", State: Finalized}}}
	fallback := &memResolver{recs: map[string]Record{
		"a": {ID: "a", State: NeedsReview},
		"b": {ID: "b", State: Todo},
	}}
	l := &Layered{Primary: primary, Fallback: fallback}
	ctx := t.Context()

	rec, found, err := l.Lookup(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Finalized, rec.State)

	rec, found, err = l.Lookup(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Todo, rec.State)

	require.NoError(t, l.Put(ctx, Record{ID: "c", State: NeedsReview}))
	assert.Contains(t, primary.recs, "c")
	assert.NotContains(t, fallback.recs, "c")

	list, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []State{Finalized, Todo, NeedsReview}, []State{list[0].State, list[1].State, list[2].State})
}
