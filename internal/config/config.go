package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Senticor-ai/project-sub002/internal/jsonld"
)

// Config models gtd.yml.
type Config struct {
	Codec struct {
		Namespace     string `yaml:"namespace"`
		SchemaVersion int    `yaml:"schema_version"`
	} `yaml:"codec"`
	Store struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Source  string        `yaml:"source"`
		APIKey  string        `yaml:"api_key"`
	} `yaml:"store"`
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with gtd config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	ns := c.Codec.Namespace
	if ns == "" {
		return fmt.Errorf("config.codec.namespace is required")
	}
	if strings.ContainsAny(ns, ": ") {
		return fmt.Errorf("config.codec.namespace %q must not contain colons or spaces", ns)
	}
	if c.Codec.SchemaVersion < 1 {
		return fmt.Errorf("config.codec.schema_version must be positive")
	}
	if c.Store.BaseURL == "" {
		return fmt.Errorf("config.store.base_url is required")
	}
	u, err := url.Parse(c.Store.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config.store.base_url %q is not an absolute url", c.Store.BaseURL)
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("config.store.timeout must not be negative")
	}
	if c.Store.Source == "" {
		return fmt.Errorf("config.store.source is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	return nil
}

// CodecConfig returns the codec settings. Clock, uuid source and logger are
// left to the caller.
func (c *Config) CodecConfig() jsonld.Config {
	return jsonld.Config{
		Namespace:     c.Codec.Namespace,
		SchemaVersion: c.Codec.SchemaVersion,
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "gtd.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing
// from data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `codec:
  namespace: app
  schema_version: 2

store:
  base_url: http://127.0.0.1:8080/v0
  timeout: 10s
  source: cli

server:
  addr: 127.0.0.1:8080
  base_path: /v0
`
