package prune

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

func setup(t *testing.T) (src, out string, c *Collector) {
	t.Helper()
	root := t.TempDir()
	src = filepath.Join(root, "src")
	out = filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(src, 0o750))
	require.NoError(t, os.MkdirAll(out, 0o750))

	naming := outputstate.NewNaming(config.Default().Prefixes, ".js")
	c = &Collector{
		Sources:  src,
		Glob:     "*.vue",
		Naming:   naming,
		Resolver: &outputstate.PrefixResolver{Dir: out, Naming: naming},
	}
	return src, out, c
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestCollect(t *testing.T) {
	src, out, c := setup(t)

	touch(t, filepath.Join(src, "a.vue"))
	touch(t, filepath.Join(src, "_todo_b.vue"))
	touch(t, filepath.Join(src, "_deprecated_c.vue"))
	touch(t, filepath.Join(src, "d.vue"))
	touch(t, filepath.Join(src, "e.vue"))

	touch(t, filepath.Join(out, "a.js"))
	touch(t, filepath.Join(out, "_todo_b.js"))
	touch(t, filepath.Join(out, "c.js"))
	touch(t, filepath.Join(out, "_review_d.js"))

	res, err := c.Collect(t.Context())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(src, "a.vue"),
		filepath.Join(src, "_todo_b.vue"),
		filepath.Join(src, "_deprecated_c.vue"),
	}, res.Pruned)
	assert.Equal(t, 2, res.Kept)

	assert.NoFileExists(t, filepath.Join(src, "a.vue"))
	assert.FileExists(t, filepath.Join(src, "d.vue"))
	assert.FileExists(t, filepath.Join(src, "e.vue"))
}

func TestCollect_DryRun(t *testing.T) {
	src, out, c := setup(t)
	c.DryRun = true
	touch(t, filepath.Join(src, "a.vue"))
	touch(t, filepath.Join(out, "a.js"))

	res, err := c.Collect(t.Context())
	require.NoError(t, err)
	assert.Len(t, res.Pruned, 1)
	assert.FileExists(t, filepath.Join(src, "a.vue"))
}

func TestPromoted(t *testing.T) {
	assert.False(t, Promoted(outputstate.NeedsReview))
	assert.False(t, Promoted(outputstate.Unknown))
	assert.True(t, Promoted(outputstate.Finalized))
	assert.True(t, Promoted(outputstate.Todo))
	assert.True(t, Promoted(outputstate.Deprecated))
}
