// Package config provides configuration structures for the discovery service.
// Settings are read from a YAML file; every field has a usable default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ConfigRelPath is the config file location relative to the XDG config directories.
const ConfigRelPath = "discovery/config.yaml"

// ContentSettings describes where articles are loaded from.
type ContentSettings struct {
	Dir        string   `yaml:"dir"`        // Directory of markdown articles with YAML front matter
	Feed       string   `yaml:"feed"`       // Optional RSS/Atom file path or URL
	Snapshot   string   `yaml:"snapshot"`   // Optional gob snapshot written by "discovery snapshot"
	Watch      bool     `yaml:"watch"`      // Reload when files under Dir change
	Extensions []string `yaml:"extensions"` // File extensions treated as articles, e.g. [".md", ".mdx"]
}

// DiscoverySettings tunes the interactive article list.
type DiscoverySettings struct {
	ListPath  string `yaml:"list_path"` // URL path of the bare article list
	Debounce  string `yaml:"debounce"`  // Quiet period before search input is committed, e.g. "300ms"
	Collation string `yaml:"collation"` // BCP 47 language used to compare titles
}

// LogSettings configures the zap logger.
type LogSettings struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // Console encoder instead of JSON
}

// Settings is the complete service configuration.
type Settings struct {
	Listen    string            `yaml:"listen"`
	DataDir   string            `yaml:"data_dir"` // Analytics and API snapshots; empty keeps analytics in memory only
	Content   ContentSettings   `yaml:"content"`
	Discovery DiscoverySettings `yaml:"discovery"`
	Log       LogSettings       `yaml:"log"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	s := Settings{}
	s.ApplyDefaults()
	return s
}

// Load reads settings from path. An empty path searches the XDG config
// directories for ConfigRelPath; when nothing is found the defaults are returned.
func Load(path string) (Settings, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(ConfigRelPath)
		if err != nil {
			return Default(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML settings and fills in defaults for missing fields.
func Parse(data []byte) (Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config: %w", err)
	}
	settings.ApplyDefaults()
	return settings, nil
}

// DefaultPath returns where a new config file should be written.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(ConfigRelPath)
}

// Validate returns a description of every invalid setting; an empty result
// means the settings are usable.
func (settings *Settings) Validate() []string {
	var conflicts []string

	if strings.TrimSpace(settings.Listen) == "" {
		conflicts = append(conflicts, "listen address cannot be empty")
	}

	if settings.Content.Dir == "" && settings.Content.Feed == "" && settings.Content.Snapshot == "" {
		conflicts = append(conflicts, "at least one of content.dir, content.feed or content.snapshot must be set")
	}
	if settings.Content.Watch && settings.Content.Dir == "" {
		conflicts = append(conflicts, "content.watch requires content.dir")
	}
	conflicts = append(conflicts, checkDuplicates("content.extensions", settings.Content.Extensions)...)
	for _, ext := range settings.Content.Extensions {
		if !strings.HasPrefix(ext, ".") {
			conflicts = append(conflicts, "Extension '"+ext+"' in content.extensions must start with '.'")
		}
	}

	if !strings.HasPrefix(settings.Discovery.ListPath, "/") {
		conflicts = append(conflicts, "discovery.list_path must start with '/'")
	}
	if strings.ContainsAny(settings.Discovery.ListPath, "?#") {
		conflicts = append(conflicts, "discovery.list_path cannot contain a query string or fragment")
	}
	if d, err := time.ParseDuration(settings.Discovery.Debounce); err != nil {
		conflicts = append(conflicts, "Invalid discovery.debounce '"+settings.Discovery.Debounce+"': "+err.Error())
	} else if d < 0 {
		conflicts = append(conflicts, "discovery.debounce cannot be negative")
	}
	if _, err := language.Parse(settings.Discovery.Collation); err != nil {
		conflicts = append(conflicts, "Invalid discovery.collation '"+settings.Discovery.Collation+"': "+err.Error())
	}

	switch strings.ToLower(settings.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		conflicts = append(conflicts, "Invalid log.level '"+settings.Log.Level+"' (must be debug, info, warn or error)")
	}

	return conflicts
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, values []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, value := range values {
		if seen[value] {
			errors = append(errors, "Duplicate value '"+value+"' found in "+fieldName)
		}
		seen[value] = true
	}

	return errors
}

// ApplyDefaults fills in every unset field
func (settings *Settings) ApplyDefaults() {
	if settings.Listen == "" {
		settings.Listen = ":8080"
	}
	if settings.Content.Dir == "" && settings.Content.Feed == "" && settings.Content.Snapshot == "" {
		settings.Content.Dir = "content/articles"
	}
	if settings.Content.Extensions == nil {
		settings.Content.Extensions = []string{".md", ".mdx"}
	}
	if settings.Discovery.ListPath == "" {
		settings.Discovery.ListPath = "/articles"
	}
	if settings.Discovery.Debounce == "" {
		settings.Discovery.Debounce = "300ms"
	}
	if settings.Discovery.Collation == "" {
		settings.Discovery.Collation = "en"
	}
	if settings.Log.Level == "" {
		settings.Log.Level = "info"
	}
}

// DebounceDuration returns the parsed debounce delay, 300ms when invalid.
func (settings *Settings) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(settings.Discovery.Debounce)
	if err != nil || d < 0 {
		return 300 * time.Millisecond
	}
	return d
}

// CollationTag returns the title collation language, English when invalid.
func (settings *Settings) CollationTag() language.Tag {
	tag, err := language.Parse(settings.Discovery.Collation)
	if err != nil {
		return language.English
	}
	return tag
}
