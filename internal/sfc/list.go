package sfc

import (
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// List returns the raw source files in dir matching glob, sorted by path.
// A missing directory yields no files.
func List(dir, glob string) ([]string, error) {
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid source glob").
			WithContext("glob", glob).
			Build()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read source directory").
			AtPath(dir).
			Build()
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(glob, e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
