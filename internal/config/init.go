package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

const exampleConfig = `# corpusgen configuration
version: "1"

paths:
  sources: examples/src          # raw single-file example sources
  source_glob: "*.vue"
  output: examples/generated     # generated modules (state encoded by prefix)
  output_ext: .js
  metadata: examples/meta.json   # per-id metadata store
  index: examples/index.js       # module index, regenerated every run
  stubs: examples/types          # per-id type stubs, created once

prefixes:
  needs_review: _review_
  todo: _todo_
  deprecated: _deprecated_

script:
  loader_hook: useLoaders
  link_helper: onLinkClick
  layout_component: ExampleLayout
  analysis_marker: "// for analysis"
  init_binding: init

markup:
  info_attribute: "#info"
  paragraph_tag: p

normalize:
  max_body_length: 70
  project_link:
    content: three.js
    url: https://threejs.org

state:
  backend: ledger                # ledger | prefix
  ledger: examples/.corpusgen-state.db

pipeline:
  workers: 4

watch:
  debounce: 500ms
  interval: 0s                   # periodic full rebuild, 0 disables

metrics:
  textfile: ""                   # Prometheus textfile written after each run
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			AtPath(configPath).
			Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").Fatal().Build()
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			Fatal().
			AtPath(configPath).
			Build()
	}
	return nil
}
