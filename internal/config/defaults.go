package config

import "time"

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field. Prefixes are only defaulted when
// the whole prefix section is empty so a deliberately empty prefix is
// rejected by Validate instead of being silently replaced.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}

	p := &c.Paths
	setDefault(&p.Sources, "examples/src")
	setDefault(&p.SourceGlob, "*.vue")
	setDefault(&p.Output, "examples/generated")
	setDefault(&p.OutputExt, ".js")
	setDefault(&p.Metadata, "examples/meta.json")
	setDefault(&p.Index, "examples/index.js")
	setDefault(&p.Stubs, "examples/types")

	if c.Prefixes == (PrefixConfig{}) {
		c.Prefixes = PrefixConfig{
			NeedsReview: "_review_",
			Todo:        "_todo_",
			Deprecated:  "_deprecated_",
		}
	}

	s := &c.Script
	setDefault(&s.LoaderHook, "useLoaders")
	setDefault(&s.LinkHelper, "onLinkClick")
	setDefault(&s.LayoutComponent, "ExampleLayout")
	setDefault(&s.AnalysisMarker, "// for analysis")
	setDefault(&s.InitBinding, "init")

	setDefault(&c.Markup.InfoAttribute, "#info")
	setDefault(&c.Markup.ParagraphTag, "p")

	if c.Normalize.MaxBodyLength <= 0 {
		c.Normalize.MaxBodyLength = 70
	}
	setDefault(&c.Normalize.ProjectLink.Content, "three.js")
	setDefault(&c.Normalize.ProjectLink.URL, "https://threejs.org")

	if c.State.Backend == "" {
		c.State.Backend = StateBackendLedger
	}
	setDefault(&c.State.Ledger, "examples/.corpusgen-state.db")

	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 1
	}

	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Watch.Interval < 0 {
		c.Watch.Interval = 0
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
