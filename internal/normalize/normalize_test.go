package normalize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/infoblock"
	"git.home.luguber.info/inful/corpusgen/internal/module"
)

var three = infoblock.Link("three.js", "https://threejs.org")

func newNormalizer() *Normalizer {
	return New(config.Default().Normalize, nil)
}

// body returns a text paragraph whose rendered length is n.
func body(n int) infoblock.Paragraph {
	return infoblock.Paragraph{infoblock.Text(strings.Repeat("x", n))}
}

func TestReshape(t *testing.T) {
	tests := []struct {
		name   string
		in     infoblock.Block
		want   infoblock.Block
		ok     bool
		reason string
	}{
		{
			name: "single paragraph",
			in:   infoblock.Block{{three, infoblock.Text("demo")}},
			want: infoblock.Block{{three, infoblock.Text("demo")}},
			ok:   true,
		},
		{
			name: "project link with body at limit",
			in:   infoblock.Block{{three}, body(70)},
			want: infoblock.Block{append(infoblock.Paragraph{three}, body(70)...)},
			ok:   true,
		},
		{
			name:   "project link with body over limit",
			in:     infoblock.Block{{three}, body(71)},
			reason: ReasonBodyTooLong,
		},
		{
			name: "link in body counts surrounding spaces",
			in: infoblock.Block{{three}, {
				infoblock.Text(strings.Repeat("x", 64)),
				infoblock.Link("abcd", "https://x"),
			}},
			want: infoblock.Block{{three, infoblock.Text(strings.Repeat("x", 64)), infoblock.Link("abcd", "https://x")}},
			ok:   true,
		},
		{
			name: "link in body pushes over limit",
			in: infoblock.Block{{three}, {
				infoblock.Text(strings.Repeat("x", 65)),
				infoblock.Link("abcd", "https://x"),
			}},
			reason: ReasonBodyTooLong,
		},
		{
			name:   "two paragraphs without project link",
			in:     infoblock.Block{{infoblock.Link("other", "https://o")}, body(3)},
			reason: ReasonShape,
		},
		{
			name:   "project link with different url",
			in:     infoblock.Block{{infoblock.Link("three.js", "https://example.com")}, body(3)},
			reason: ReasonShape,
		},
		{
			name:   "three paragraphs",
			in:     infoblock.Block{{three}, body(1), body(1)},
			reason: ReasonShape,
		},
		{
			name:   "empty",
			in:     infoblock.Block{},
			reason: ReasonEmpty,
		},
	}

	n := newNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, reason := n.Reshape(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
			if tt.ok {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Fatalf("reshape mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestReshape_ConfigurableThreshold(t *testing.T) {
	cfg := config.Default().Normalize
	cfg.MaxBodyLength = 10
	n := New(cfg, nil)

	_, ok, _ := n.Reshape(infoblock.Block{{three}, body(10)})
	assert.True(t, ok)
	_, ok, _ = n.Reshape(infoblock.Block{{three}, body(11)})
	assert.False(t, ok)
}

func TestReshape_AstralCharactersCountTwice(t *testing.T) {
	cfg := config.Default().Normalize
	cfg.MaxBodyLength = 10
	n := New(cfg, nil)

	fits := infoblock.Paragraph{infoblock.Text(strings.Repeat("x", 8) + "🎉")}
	_, ok, _ := n.Reshape(infoblock.Block{{three}, fits})
	assert.True(t, ok)

	over := infoblock.Paragraph{infoblock.Text(strings.Repeat("x", 9) + "🎉")}
	_, ok, _ = n.Reshape(infoblock.Block{{three}, over})
	assert.False(t, ok)
}

func render(t *testing.T, info infoblock.Block) []byte {
	t.Helper()
	out, err := module.Render(module.Module{ID: "a", Loaders: "[]", Info: info, Init: "() => {}"})
	require.NoError(t, err)
	return out
}

func TestText_FoldsShortBody(t *testing.T) {
	src := render(t, infoblock.Block{{three}, {infoblock.Text("webgl - box")}})

	res := newNormalizer().Text(t.Context(), src)
	require.True(t, res.Fixed)
	assert.True(t, res.Changed)
	assert.Equal(t, string(render(t, infoblock.Block{{three, infoblock.Text("webgl - box")}})), string(res.Content))

	again := newNormalizer().Text(t.Context(), res.Content)
	assert.True(t, again.Fixed)
	assert.False(t, again.Changed)
}

func TestText_UnparseableNeverEvaluated(t *testing.T) {
	src := []byte("export default {\n  info: (() => { throw new Error('x') })(),\n  init: () => {},\n}\n")
	res := newNormalizer().Text(t.Context(), src)
	assert.False(t, res.Fixed)
	assert.Equal(t, ReasonUnparseable, res.Reason)
	assert.Equal(t, src, res.Content)
}

func TestText_NoInfo(t *testing.T) {
	res := newNormalizer().Text(t.Context(), []byte("export default {}\n"))
	assert.False(t, res.Fixed)
	assert.Equal(t, ReasonNoInfo, res.Reason)
}

func TestFile_DryRunLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_review_a.js")
	src := render(t, infoblock.Block{{three}, {infoblock.Text("short")}})
	require.NoError(t, os.WriteFile(path, src, 0o600))

	res, err := newNormalizer().File(t.Context(), path, true)
	require.NoError(t, err)
	assert.True(t, res.Fixed)
	assert.True(t, res.Changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src, data)

	_, err = newNormalizer().File(t.Context(), path, false)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Content, data)
}
