package scaffold

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

type (
	Config struct {
		Template   TemplateConfig `toml:"template" yaml:"template"`
		TypeScript Bundle         `toml:"typescript" yaml:"typescript"`
		GraphQL    Bundle         `toml:"graphql" yaml:"graphql"`
	}

	TemplateConfig struct {
		// Source is a download-git-repo style reference: [github:]owner/repo[#ref].
		Source  string `toml:"source" yaml:"source"`
		BaseURL string `toml:"base-url" yaml:"base-url"`
		// Clone is nil when the file leaves it unset.
		Clone   *bool  `toml:"clone" yaml:"clone"`
	}

	// Bundle is the manifest payload of one opt-in. Empty maps leave the manifest field alone.
	Bundle struct {
		Dependencies    map[string]string `toml:"dependencies" yaml:"dependencies"`
		DevDependencies map[string]string `toml:"devDependencies" yaml:"devDependencies"`
		Scripts         map[string]string `toml:"scripts" yaml:"scripts"`
	}
)

//go:embed data/defaults.toml
var defaultsTOML []byte

// LoadConfig returns the embedded defaults, overlaid with the file at path when path is not empty.
// Non-nil returned error wraps [ErrConfig].
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if err := toml.Unmarshal(defaultsTOML, &cfg); err != nil {
		return nil, fmt.Errorf("%w: embedded defaults: %w", ErrConfig, err)
	}

	if path == "" {
		return &cfg, nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %q: %w", ErrConfig, path, err)
	}

	var override Config

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(contents, &override)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(contents, &override)
	default:
		return nil, fmt.Errorf("%w: unsupported config file extension %q, use .toml, .yaml or .yml", ErrConfig, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %q: %w", ErrConfig, path, err)
	}

	cfg.merge(&override)

	return &cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Template.Source != "" {
		c.Template.Source = o.Template.Source
	}

	if o.Template.BaseURL != "" {
		c.Template.BaseURL = o.Template.BaseURL
	}

	if o.Template.Clone != nil {
		c.Template.Clone = o.Template.Clone
	}

	c.TypeScript.merge(&o.TypeScript)
	c.GraphQL.merge(&o.GraphQL)
}

// UseClone reports whether the template is fetched with git rather than as an archive.
func (t TemplateConfig) UseClone() bool {
	return t.Clone != nil && *t.Clone
}

func (b *Bundle) merge(o *Bundle) {
	b.Dependencies = mergeMaps(b.Dependencies, o.Dependencies)
	b.DevDependencies = mergeMaps(b.DevDependencies, o.DevDependencies)
	b.Scripts = mergeMaps(b.Scripts, o.Scripts)
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}

	if base == nil {
		base = make(map[string]string, len(over))
	}

	maps.Copy(base, over)

	return base
}
