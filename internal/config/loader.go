package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default override file name.
const DefaultConfigFile = ".factbase"

// ErrConfigNotFound is returned when the override file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration wraps time.Duration so values like "10s" decode from YAML.
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// File represents the structure of the .factbase override file. Every field
// is optional; zero values leave the flag-derived configuration untouched.
type File struct {
	// StartURL overrides the listing start URL.
	StartURL string `yaml:"startUrl,omitempty"`

	// DetailPattern overrides the detail-URL regular expression used to
	// filter harvested links.
	DetailPattern string `yaml:"detailPattern,omitempty"`

	// UserAgent overrides the fetch User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are extra HTTP headers to include in fetch requests.
	Headers map[string]string `yaml:"headers,omitempty"`

	// RPS overrides the requests-per-second ceiling.
	RPS float64 `yaml:"rps,omitempty"`

	// FetchTimeout overrides the per-attempt timeout.
	FetchTimeout Duration `yaml:"fetchTimeout,omitempty"`
}

// LoadConfigFile loads overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers decide
// whether that is fatal based on whether the path was explicitly given.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the override file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .factbase in the current directory
//  3. Look for .factbase in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies the non-zero override values onto the configuration.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.StartURL != "" {
		c.StartURL = f.StartURL
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.RPS > 0 {
		c.RPS = f.RPS
	}
	if f.FetchTimeout > 0 {
		c.FetchTimeout = time.Duration(f.FetchTimeout)
	}
	c.Overrides = f
}
