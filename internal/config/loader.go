package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scentdb/scentcrawl/internal/frontier"
)

// DefaultConfigFile is the default configuration file name, searched
// in the XDG config directory and then the current directory.
const DefaultConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not
// exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file shape. Everything in it is a
// default; CLI flags win.
type File struct {
	// Proxies seeds the identity pool when --proxy/--proxies-file
	// are absent.
	Proxies []string `yaml:"proxies"`

	// Brands seeds the brand list when --brand/--brands-file are
	// absent.
	Brands []string `yaml:"brands"`

	// UserAgent pins the User-Agent header.
	UserAgent string `yaml:"user_agent"`

	// DataDir overrides the XDG data directory.
	DataDir string `yaml:"data_dir"`
}

// LoadConfigFile loads defaults from a YAML file. A missing file
// returns ErrConfigNotFound; callers decide whether that matters
// based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile locates the configuration file: an explicit path
// first, then the XDG config directory, then the current directory.
// Empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	return ""
}

// Apply merges file defaults into the config, filling only what the
// flags left empty.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	if c.UserAgent == "" {
		c.UserAgent = f.UserAgent
	}
	if f.DataDir != "" && c.DataDir == XDGDataDir() {
		c.DataDir = f.DataDir
	}
	// Explicit seed URLs mean an unscoped crawl; file brands would
	// turn that into a seeds-and-brands conflict the user never asked
	// for.
	if len(c.Brands) == 0 && c.BrandsFile == "" && len(c.Seeds) == 0 {
		c.Brands = append(c.Brands, f.Brands...)
	}
	if c.Proxy == "" && c.ProxiesFile == "" && len(c.Proxies) == 0 {
		c.Proxies = append(c.Proxies, f.Proxies...)
	}
}

// LoadLines reads a line-per-entry list file. Blank lines and lines
// starting with # are ignored.
func LoadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided list path is intentional
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries, nil
}

// DedupeBrands removes duplicate brands case-insensitively while
// preserving order, so "Chanel" and "CHANEL" run once.
func DedupeBrands(brands []string) []string {
	seen := make(map[string]struct{}, len(brands))
	var out []string
	for _, brand := range brands {
		brand = strings.TrimSpace(brand)
		if brand == "" {
			continue
		}
		key := frontier.FoldKey(brand)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, brand)
	}
	return out
}
