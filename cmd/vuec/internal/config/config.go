package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/recera/vuec/pkg/compiler/parser"
	"github.com/recera/vuec/pkg/compiler/text"
	"github.com/recera/vuec/pkg/compiler/web"
)

// File names searched by Load, in order.
var FileNames = []string{"vuec.yaml", "vuec.yml", "vuec.json"}

// ErrInvalidConfig is wrapped by every schema or semantic validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// slotSyntaxVersion is the first Vue release with v-slot.
const slotSyntaxVersion = "v2.6.0"

//go:embed schema.json
var schemaJSON string

// Config represents the vuec.yaml configuration
type Config struct {
	// Vue release the templates target, e.g. "2.6.14"
	VueVersion string `json:"vueVersion,omitempty" yaml:"vueVersion,omitempty"`

	// Directory scanned by check and watch
	SourceDir string `json:"sourceDir,omitempty" yaml:"sourceDir,omitempty"`

	// Template file extensions, with the leading dot
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	Parser *ParserConfig `json:"parser,omitempty" yaml:"parser,omitempty"`
	Cache  *CacheConfig  `json:"cache,omitempty" yaml:"cache,omitempty"`
	Watch  *WatchConfig  `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// ParserConfig mirrors the user-facing parser options.
type ParserConfig struct {
	// "condense" | "preserve" | "ignore"
	Whitespace string `json:"whitespace,omitempty" yaml:"whitespace,omitempty"`

	PreserveComments bool `json:"preserveComments,omitempty" yaml:"preserveComments,omitempty"`

	// Interpolation delimiters, open then close
	Delimiters []string `json:"delimiters,omitempty" yaml:"delimiters,omitempty"`

	// Enables the `.prop` binding shorthand
	PropShorthand bool `json:"propShorthand,omitempty" yaml:"propShorthand,omitempty"`

	SSR bool `json:"ssr,omitempty" yaml:"ssr,omitempty"`

	// Suppresses template warnings
	Quiet bool `json:"quiet,omitempty" yaml:"quiet,omitempty"`
}

// CacheConfig controls the parsed document cache.
type CacheConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty"`
	MaxSizeMB int64  `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty"`
	MaxAge    string `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
}

// WatchConfig contains watch mode configuration
type WatchConfig struct {
	// Address of the diagnostics websocket, empty to disable
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	DebounceMS int `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	compiler.Formats["semver"] = func(v interface{}) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		return semver.IsValid(canonicalVersion(s))
	}
	compiler.Formats["duration"] = func(v interface{}) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		_, err := time.ParseDuration(s)
		return err == nil
	}

	const url = "schema://vuec.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
})

// Load loads configuration from the first config file found in
// projectPath. Without a config file the defaults are returned.
func Load(projectPath string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(projectPath, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return Parse(data, filepath.Ext(name) == ".json")
	}
	return DefaultConfig(), nil
}

// Parse decodes, schema-checks and validates a configuration document.
func Parse(data []byte, isJSON bool) (*Config, error) {
	var raw interface{}
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var config Config
	if isJSON {
		err := json.Unmarshal(data, &config)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateSchema checks a decoded document against the embedded schema.
// The document is normalized through JSON so YAML scalars get JSON types.
func validateSchema(raw interface{}) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Save writes the configuration to vuec.yaml in projectPath.
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileNames[0]), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		VueVersion: "2.6.14",
		SourceDir:  "src",
		Extensions: []string{".vue", ".html"},
		Parser: &ParserConfig{
			Whitespace: "condense",
		},
		Cache: &CacheConfig{
			Enabled:   true,
			MaxSizeMB: 256,
			MaxAge:    "168h",
		},
		Watch: &WatchConfig{
			DebounceMS: 100,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.VueVersion == "" {
		config.VueVersion = defaults.VueVersion
	}
	if config.SourceDir == "" {
		config.SourceDir = defaults.SourceDir
	}
	if len(config.Extensions) == 0 {
		config.Extensions = defaults.Extensions
	}

	if config.Parser == nil {
		config.Parser = defaults.Parser
	} else if config.Parser.Whitespace == "" {
		config.Parser.Whitespace = defaults.Parser.Whitespace
	}

	if config.Cache == nil {
		config.Cache = defaults.Cache
	} else {
		if config.Cache.MaxSizeMB == 0 {
			config.Cache.MaxSizeMB = defaults.Cache.MaxSizeMB
		}
		if config.Cache.MaxAge == "" {
			config.Cache.MaxAge = defaults.Cache.MaxAge
		}
	}

	if config.Watch == nil {
		config.Watch = defaults.Watch
	} else if config.Watch.DebounceMS == 0 {
		config.Watch.DebounceMS = defaults.Watch.DebounceMS
	}
}

// Validate checks the settings the schema cannot express.
func (c *Config) Validate() error {
	if !semver.IsValid(canonicalVersion(c.VueVersion)) {
		return fmt.Errorf("%w: vueVersion %q is not a semantic version", ErrInvalidConfig, c.VueVersion)
	}
	if major := semver.Major(canonicalVersion(c.VueVersion)); major != "v2" {
		return fmt.Errorf("%w: vueVersion %q: only Vue 2 templates are supported", ErrInvalidConfig, c.VueVersion)
	}
	if _, err := ParseWhitespace(c.Parser.Whitespace); err != nil {
		return err
	}
	if d := c.Parser.Delimiters; len(d) != 0 && (len(d) != 2 || d[0] == "" || d[1] == "") {
		return fmt.Errorf("%w: delimiters must be an open and a close string", ErrInvalidConfig)
	}
	if _, err := c.CacheMaxAge(); err != nil {
		return err
	}
	return nil
}

// NewSlotSyntax reports whether the target Vue release understands v-slot.
func (c *Config) NewSlotSyntax() bool {
	return semver.Compare(canonicalVersion(c.VueVersion), slotSyntaxVersion) >= 0
}

// CacheMaxAge parses the cache entry lifetime.
func (c *Config) CacheMaxAge() (time.Duration, error) {
	if c.Cache == nil || c.Cache.MaxAge == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("%w: cache.maxAge: %v", ErrInvalidConfig, err)
	}
	return d, nil
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	if c.Watch == nil {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// HasExtension reports whether path is a template file.
func (c *Config) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// ToOptions builds browser parser options from the configuration.
func (c *Config) ToOptions(logger *slog.Logger) parser.Options {
	opts := web.BaseOptions()
	opts.Logger = logger
	opts.NewSlotSyntax = c.NewSlotSyntax()
	if p := c.Parser; p != nil {
		opts.Dev = !p.Quiet
		opts.IsSSR = p.SSR
		opts.PreserveComments = p.PreserveComments
		opts.VBindPropShorthand = p.PropShorthand
		if ws, err := ParseWhitespace(p.Whitespace); err == nil {
			opts.Whitespace = ws
		}
		if len(p.Delimiters) == 2 {
			opts.Delimiters = text.Delimiters{Open: p.Delimiters[0], Close: p.Delimiters[1]}
		}
	}
	return opts
}

// Fingerprint identifies every setting that changes parser output, for use
// in cache keys.
func (c *Config) Fingerprint() string {
	data, _ := json.Marshal(struct {
		VueVersion string        `json:"v"`
		Parser     *ParserConfig `json:"p"`
	}{c.VueVersion, c.Parser})
	return string(data)
}

// ParseWhitespace maps a whitespace mode name to the parser setting.
func ParseWhitespace(s string) (parser.WhitespaceHandling, error) {
	switch strings.ToLower(s) {
	case "", "condense":
		return parser.Condense, nil
	case "preserve":
		return parser.Preserve, nil
	case "ignore":
		return parser.Ignore, nil
	}
	return 0, fmt.Errorf("%w: unknown whitespace mode %q", ErrInvalidConfig, s)
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
