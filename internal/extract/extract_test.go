package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/infoblock"
	"git.home.luguber.info/inful/corpusgen/internal/sfc"
)

func newExtractor() *Extractor {
	return New(config.Default().Markup, nil)
}

func wrap(info string) string {
	return `<ExampleLayout :loaders="loaders">
  <template #info>` + info + `</template>
</ExampleLayout>`
}

var projectLink = infoblock.Link("three.js", "https://threejs.org")

func TestExtractMarkup(t *testing.T) {
	cases := []struct {
		name string
		info string
		want infoblock.Block
	}{
		{
			name: "link break text",
			info: `<a href="https://threejs.org">three.js</a><br/>webgl - materials`,
			want: infoblock.Block{{projectLink}, {infoblock.Text("webgl - materials")}},
		},
		{
			name: "link text without break",
			info: `<a href="https://threejs.org">three.js</a> webgl - materials`,
			want: infoblock.Block{{projectLink, infoblock.Text("webgl - materials")}},
		},
		{
			name: "paragraph text splits on newlines",
			info: "<a href=\"https://threejs.org\">three.js</a><br><p>\n  first line\n\n  second   line\n</p>",
			want: infoblock.Block{{projectLink}, {infoblock.Text("first line"), infoblock.Text("second line")}},
		},
		{
			name: "unsupported elements and comments are dropped",
			info: `<!-- note --><span>ignored</span>kept`,
			want: infoblock.Block{{infoblock.Text("kept")}},
		},
		{
			name: "empty container is one empty paragraph",
			info: "\n   \n",
			want: infoblock.Block{{}},
		},
		{
			name: "consecutive breaks collapse",
			info: `a<br><br><br>b`,
			want: infoblock.Block{{infoblock.Text("a")}, {infoblock.Text("b")}},
		},
		{
			name: "text is NFC normalised",
			info: "Cafe\u0301",
			want: infoblock.Block{{infoblock.Text("Caf\u00e9")}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := newExtractor().ExtractMarkup(wrap(tc.info))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ExtractMarkup() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractMarkup_NestedElementsAreParseErrors(t *testing.T) {
	for _, info := range []string{
		`<a href="https://threejs.org"><b>three.js</b></a>`,
		`<p>see <a href="x">here</a></p>`,
	} {
		_, err := newExtractor().ExtractMarkup(wrap(info))
		require.Error(t, err, info)
		assert.True(t, errors.HasCategory(err, errors.CategoryParse), "got %v", err)
	}
}

func TestExtractMarkup_MissingContainer(t *testing.T) {
	_, err := newExtractor().ExtractMarkup(`<div>no info here</div>`)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryParse))
}

func TestExtract_RejectsStyleBlock(t *testing.T) {
	src := &sfc.Source{
		ID:       "webgl_styled",
		Template: wrap("text"),
		Style:    "canvas { display: block }",
		HasStyle: true,
	}
	_, err := newExtractor().Extract(src)
	require.Error(t, err)

	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryParse, classified.Category())
	id, _ := classified.Context().GetString("example_id")
	assert.Equal(t, "webgl_styled", id)
}

func TestExtract_TagsErrorsWithExampleID(t *testing.T) {
	src := &sfc.Source{ID: "webgl_nested", Template: wrap(`<a href="x"><i>x</i></a>`)}
	_, err := newExtractor().Extract(src)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	id, _ := classified.Context().GetString("example_id")
	assert.Equal(t, "webgl_nested", id)
}

func TestNodes_KeepsBreaks(t *testing.T) {
	nodes, err := newExtractor().Nodes(wrap(`a<br>b`))
	require.NoError(t, err)
	assert.Equal(t, []infoblock.Node{infoblock.Text("a"), infoblock.Break(), infoblock.Text("b")}, nodes)
}
