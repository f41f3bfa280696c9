// Package module renders generated example modules and locates the info
// literal inside an existing one.
package module

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/corpusgen/internal/infoblock"
	"git.home.luguber.info/inful/corpusgen/internal/jsparse"
)

const (
	infoMarker = "info: "
	initMarker = ",\n  init"
	infoIndent = "  "
)

// Module is the content of one generated example module.
type Module struct {
	ID          string
	ImportLines []string
	Loaders     string
	Info        infoblock.Block
	Init        string
}

var moduleTemplate = template.Must(template.New("module").
	Funcs(template.FuncMap{"quote": jsparse.Quote}).
	Option("missingkey=error").
	Parse(`{{range .Imports}}{{.}}
{{end}}{{if .Imports}}
{{end}}export default {
  name: {{quote .ID}},
  useLoaders: {{.Loaders}},
  info: {{.Info}},
  init: {{.Init}},
}
`))

// Render produces the module text.
func Render(m Module) ([]byte, error) {
	loaders := strings.TrimSpace(m.Loaders)
	if loaders == "" {
		loaders = "[]"
	}
	data := map[string]any{
		"ID":      m.ID,
		"Imports": m.ImportLines,
		"Loaders": loaders,
		"Info":    m.Info.Literal(infoIndent),
		"Init":    m.Init,
	}
	var buf bytes.Buffer
	if err := moduleTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render module %s: %w", m.ID, err)
	}
	return buf.Bytes(), nil
}

// InfoSpan returns the byte range of the info literal: the text after the
// first "info: " and before the following ",\n  init".
func InfoSpan(src string) (start, end int, err error) {
	i := strings.Index(src, infoMarker)
	if i < 0 {
		return 0, 0, fmt.Errorf("no info field")
	}
	start = i + len(infoMarker)
	j := strings.Index(src[start:], initMarker)
	if j < 0 {
		return 0, 0, fmt.Errorf("info field is not followed by init")
	}
	return start, start + j, nil
}

// InfoLiteral returns the info literal text of a generated module.
func InfoLiteral(src string) (string, error) {
	start, end, err := InfoSpan(src)
	if err != nil {
		return "", err
	}
	return src[start:end], nil
}

// ReplaceInfo swaps the info literal of src for the canonical rendering of b.
func ReplaceInfo(src string, b infoblock.Block) (string, error) {
	start, end, err := InfoSpan(src)
	if err != nil {
		return "", err
	}
	return src[:start] + b.Literal(infoIndent) + src[end:], nil
}
