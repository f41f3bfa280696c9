// Package sfc reads raw example sources: single-file components made of a
// <template> markup block, a <script> behavior block and an optional <style>
// block.
package sfc

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/util/sets"
)

// Source is one raw example source.
type Source struct {
	ID         string
	Path       string
	Template   string
	Script     string
	ScriptLang string
	Style      string
	HasStyle   bool
}

// HasNonEmptyStyle reports whether the source carries styling that the
// generated module format cannot express.
func (s *Source) HasNonEmptyStyle() bool {
	return s.HasStyle && strings.TrimSpace(s.Style) != ""
}

// IDFromPath derives an example id from a source or output file name.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadFile reads and splits the source at path.
func ReadFile(path string) (*Source, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read example source").
			Fatal().
			AtPath(path).
			Build()
	}
	src, err := Parse(data)
	if err != nil {
		return nil, err
	}
	src.ID = IDFromPath(path)
	src.Path = path
	return src, nil
}

// Parse splits data into its top-level blocks. Only the first template,
// script and style block are kept; content outside blocks is ignored.
func Parse(data []byte) (*Source, error) {
	z := html.NewTokenizer(bytes.NewReader(data))
	src := &Source{}
	seen := sets.New[string]()

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return src, nil
			}
			return nil, errors.WrapError(z.Err(), errors.CategoryParse, "failed to tokenize example source").Build()
		case html.StartTagToken:
			tok := z.Token()
			if !isBlockTag(tok.Data) {
				continue
			}
			content, err := captureBlock(z, tok.Data)
			if err != nil {
				return nil, err
			}
			if !seen.Add(tok.Data) {
				continue
			}
			assign(src, tok, content)
		case html.SelfClosingTagToken:
			tok := z.Token()
			if isBlockTag(tok.Data) && seen.Add(tok.Data) {
				assign(src, tok, "")
			}
		}
	}
}

func isBlockTag(name string) bool {
	return name == "template" || name == "script" || name == "style"
}

func assign(src *Source, tok html.Token, content string) {
	switch tok.Data {
	case "template":
		src.Template = content
	case "script":
		src.Script = content
		src.ScriptLang = attr(tok, "lang")
	case "style":
		src.Style = content
		src.HasStyle = true
	}
}

// captureBlock returns the raw text between the current start tag and its
// matching end tag. Only nested tags of the same name affect depth, since
// markup inside a template may legitimately leave void elements unclosed.
func captureBlock(z *html.Tokenizer, name string) (string, error) {
	var buf bytes.Buffer
	depth := 1
	for {
		tt := z.Next()
		raw := bytes.Clone(z.Raw())
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", errors.ParseError("unterminated block").WithContext("block", name).Build()
			}
			return "", errors.WrapError(z.Err(), errors.CategoryParse, "failed to tokenize block").Build()
		case html.StartTagToken:
			if tagName(z) == name {
				depth++
			}
		case html.EndTagToken:
			if tagName(z) == name {
				depth--
				if depth == 0 {
					return buf.String(), nil
				}
			}
		}
		buf.Write(raw)
	}
}

func tagName(z *html.Tokenizer) string {
	name, _ := z.TagName()
	return string(name)
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
