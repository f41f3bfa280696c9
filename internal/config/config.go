package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// DefaultPath is the configuration file used when -c is not given.
const DefaultPath = "corpusgen.yaml"

// Config represents the application configuration.
type Config struct {
	Version   string          `yaml:"version"`
	Paths     PathsConfig     `yaml:"paths"`
	Prefixes  PrefixConfig    `yaml:"prefixes"`
	Script    ScriptConfig    `yaml:"script"`
	Markup    MarkupConfig    `yaml:"markup"`
	Normalize NormalizeConfig `yaml:"normalize"`
	State     StateConfig     `yaml:"state"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Watch     WatchConfig     `yaml:"watch"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// PathsConfig locates the raw corpus and every derived artifact.
type PathsConfig struct {
	Sources    string `yaml:"sources"`
	SourceGlob string `yaml:"source_glob"`
	Output     string `yaml:"output"`
	OutputExt  string `yaml:"output_ext"`
	Metadata   string `yaml:"metadata"`
	Index      string `yaml:"index"`
	Stubs      string `yaml:"stubs"`
}

// PrefixConfig holds the filename prefixes that encode output state.
// A bare file name means the output is finalized.
type PrefixConfig struct {
	NeedsReview string `yaml:"needs_review"`
	Todo        string `yaml:"todo"`
	Deprecated  string `yaml:"deprecated"`
}

// ScriptConfig names the identifiers the script transformer treats specially.
type ScriptConfig struct {
	LoaderHook      string `yaml:"loader_hook"`
	LinkHelper      string `yaml:"link_helper"`
	LayoutComponent string `yaml:"layout_component"`
	AnalysisMarker  string `yaml:"analysis_marker"`
	InitBinding     string `yaml:"init_binding"`
}

// MarkupConfig selects the description container and paragraph marker.
type MarkupConfig struct {
	InfoAttribute string `yaml:"info_attribute"`
	ParagraphTag  string `yaml:"paragraph_tag"`
}

// NormalizeConfig tunes the info-shape fixer.
type NormalizeConfig struct {
	MaxBodyLength int        `yaml:"max_body_length"`
	ProjectLink   LinkConfig `yaml:"project_link"`
}

// LinkConfig is a link node expressed in configuration.
type LinkConfig struct {
	Content string `yaml:"content"`
	URL     string `yaml:"url"`
}

// StateBackend selects where output state is read from.
type StateBackend string

const (
	StateBackendLedger StateBackend = "ledger"
	StateBackendPrefix StateBackend = "prefix"
)

// StateConfig configures the output-state record.
type StateConfig struct {
	Backend StateBackend `yaml:"backend"`
	Ledger  string       `yaml:"ledger"`
}

// PipelineConfig controls batch execution.
type PipelineConfig struct {
	Workers int `yaml:"workers"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig configures the optional Prometheus textfile.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load reads, expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				AtPath(configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			AtPath(configPath).
			Build()
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads the first of .env/.env.local that exists. Existing
// process environment variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", "path", envPath)
			return
		}
	}
}
