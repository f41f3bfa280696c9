package index

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// StubExt is the extension of generated type stubs.
const StubExt = ".d.ts"

const stubTemplate = `// Type declarations for example %s.
declare const example: {
  name: string
  useLoaders: string[]
  info: Array<Array<{ tag: 'text' | 'a'; content: string; link?: string }>>
  init: (...args: any[]) => unknown
}
export default example
`

// StubPath returns the stub file for id.
func StubPath(dir, id string) string {
	return filepath.Join(dir, id+StubExt)
}

// EnsureStubs creates a stub for each id that has none and returns the ids
// it created. Existing stubs are never modified.
func EnsureStubs(dir string, ids []string, dryRun bool) ([]string, error) {
	var created []string
	for _, id := range ids {
		path := StubPath(dir, id)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return created, errors.WrapError(err, errors.CategoryFileSystem, "failed to check stub").
				AtPath(path).
				Build()
		}
		if dryRun {
			created = append(created, id)
			continue
		}

		if err := os.MkdirAll(dir, 0o750); err != nil {
			return created, errors.WrapError(err, errors.CategoryFileSystem, "failed to create stub directory").
				AtPath(dir).
				Build()
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return created, errors.WrapError(err, errors.CategoryFileSystem, "failed to create stub").
				AtPath(path).
				Build()
		}
		_, werr := fmt.Fprintf(f, stubTemplate, id)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			if werr == nil {
				werr = cerr
			}
			return created, errors.WrapError(werr, errors.CategoryFileSystem, "failed to write stub").
				AtPath(path).
				Build()
		}
		created = append(created, id)
	}
	return created, nil
}
