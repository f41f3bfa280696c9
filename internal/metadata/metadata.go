package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/util/sets"
)

// Map is the persisted metadata file: id to record.
type Map map[string]Record

// Reconcile returns a map holding exactly ids. Each record is the persisted
// record when one exists, otherwise the default. Persisted records were
// decoded over the defaults, so explicit fields win and missing ones default.
func Reconcile(ids []string, existing Map) Map {
	out := make(Map, len(ids))
	for _, id := range ids {
		if rec, ok := existing[id]; ok {
			out[id] = rec
			continue
		}
		out[id] = DefaultRecord()
	}
	return out
}

// Dropped lists, sorted, the ids present in existing but not in next.
func Dropped(existing, next Map) []string {
	gone := sets.New[string]()
	for id := range existing {
		if _, ok := next[id]; !ok {
			gone.Add(id)
		}
	}
	return sets.Sorted(gone)
}

// Load reads the metadata file. A missing file is an empty map.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read metadata").
			AtPath(path).
			Build()
	}

	m := Map{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid metadata file").
			AtPath(path).
			Build()
	}
	return m, nil
}

// Encode renders m with sorted keys and a trailing newline.
func Encode(m Map) ([]byte, error) {
	if m == nil {
		m = Map{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode metadata").Build()
	}
	return append(data, '\n'), nil
}

// Save replaces the metadata file wholesale via a temporary file and rename.
func Save(path string, m Map) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create metadata directory").
			AtPath(path).
			Build()
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metadata").
			AtPath(tempPath).
			Build()
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to replace metadata").
			AtPath(path).
			Build()
	}
	return nil
}
