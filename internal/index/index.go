// Package index generates the corpus re-export listing and per-example type
// stubs.
package index

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// Entry is one corpus member and the output file it resolves to.
type Entry struct {
	ID   string
	File string
}

// Ident turns an id into a JavaScript identifier.
func Ident(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}

// ImportPath returns the specifier used to import file from indexPath,
// without the file extension.
func ImportPath(indexPath, file string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(indexPath), file)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

// Render produces the index listing, one re-export per entry in id order.
// It is a pure function of its inputs.
func Render(indexPath string, entries []Entry) ([]byte, error) {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := make(map[string]string, len(sorted))
	var buf bytes.Buffer
	for _, e := range sorted {
		ident := Ident(e.ID)
		if other, dup := seen[ident]; dup {
			return nil, errors.ValidationError("example ids map to the same export name").
				ForExample(e.ID).
				WithContext("other", other).
				WithContext("ident", ident).
				Build()
		}
		seen[ident] = e.ID

		importPath, err := ImportPath(indexPath, e.File)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to resolve import path").
				AtPath(e.File).
				Build()
		}
		fmt.Fprintf(&buf, "export { default as %s } from '%s'\n", ident, importPath)
	}
	return buf.Bytes(), nil
}

// Write regenerates the index file. It reports whether the content changed.
func Write(indexPath string, entries []Entry) (bool, error) {
	data, err := Render(indexPath, entries)
	if err != nil {
		return false, err
	}
	if current, err := os.ReadFile(indexPath); err == nil && bytes.Equal(current, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o750); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to create index directory").
			AtPath(indexPath).
			Build()
	}
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to write index").
			AtPath(indexPath).
			Build()
	}
	return true, nil
}
