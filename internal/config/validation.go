package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if err := c.validatePrefixes(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Paths.OutputExt, ".") {
		return errors.ConfigError("paths.output_ext must start with a dot").
			WithContext("output_ext", c.Paths.OutputExt).
			Build()
	}
	if filepath.Clean(filepath.Dir(c.Paths.Index)) == filepath.Clean(c.Paths.Output) &&
		filepath.Ext(c.Paths.Index) == c.Paths.OutputExt {
		return errors.ConfigError("paths.index must not live in the output directory with the output extension").
			WithContext("index", c.Paths.Index).
			Build()
	}
	switch c.State.Backend {
	case StateBackendLedger, StateBackendPrefix:
	default:
		return errors.ConfigError("state.backend must be 'ledger' or 'prefix'").
			WithContext("backend", string(c.State.Backend)).
			Build()
	}
	if c.Markup.InfoAttribute == "" || c.Markup.ParagraphTag == "" {
		return errors.ConfigError("markup.info_attribute and markup.paragraph_tag are required").Build()
	}
	return nil
}

// validatePrefixes requires three distinct, non-empty prefixes, none of which
// is a prefix of another; otherwise a file name could decode to two states.
func (c *Config) validatePrefixes() error {
	prefixes := map[string]string{
		"needs_review": c.Prefixes.NeedsReview,
		"todo":         c.Prefixes.Todo,
		"deprecated":   c.Prefixes.Deprecated,
	}
	for name, p := range prefixes {
		if p == "" {
			return errors.ConfigError("output state prefixes must not be empty").
				WithContext("prefix", name).
				Build()
		}
		for other, q := range prefixes {
			if name != other && strings.HasPrefix(q, p) {
				return errors.ConfigError("output state prefixes must not overlap").
					WithContext("prefix", name).
					WithContext("other", other).
					Build()
			}
		}
	}
	return nil
}
