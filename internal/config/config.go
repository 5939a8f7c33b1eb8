package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "vthumb"
	configFileName = "config.yml"

	// DefaultPlaceholderWidth is the natural width of the grey image YouTube
	// serves for thumbnail sizes that do not exist.
	DefaultPlaceholderWidth = 120
	DefaultProbeTimeout     = 15 * time.Second
	DefaultServerPort       = 8080
)

// WebDAVServer is a named WebDAV remote usable as a download destination
type WebDAVServer struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// ServerConfig holds settings for `vthumb serve`
type ServerConfig struct {
	Port    int  `yaml:"port"`
	History bool `yaml:"history"`
}

// Config is the on-disk configuration
type Config struct {
	Language         string                  `yaml:"language"`
	OutputDir        string                  `yaml:"output_dir"`
	PlaceholderWidth int                     `yaml:"placeholder_width"`
	ProbeTimeout     time.Duration           `yaml:"probe_timeout"`
	UserAgent        string                  `yaml:"user_agent,omitempty"`
	Proxy            string                  `yaml:"proxy,omitempty"`
	Server           ServerConfig            `yaml:"server"`
	WebDAVServers    map[string]WebDAVServer `yaml:"webdav_servers,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Language:         "en",
		OutputDir:        ".",
		PlaceholderWidth: DefaultPlaceholderWidth,
		ProbeTimeout:     DefaultProbeTimeout,
		Server: ServerConfig{
			Port:    DefaultServerPort,
			History: true,
		},
	}
}

// ConfigDir returns ~/.config/vthumb
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// SavePath returns the config file path. VTHUMB_CONFIG overrides it.
func SavePath() string {
	if p := os.Getenv("VTHUMB_CONFIG"); p != "" {
		return p
	}
	dir, err := ConfigDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, configFileName)
}

// Exists reports whether a config file is present
func Exists() bool {
	_, err := os.Stat(SavePath())
	return err == nil
}

// Load reads the config file, filling unset fields with defaults
func Load() (*Config, error) {
	data, err := os.ReadFile(SavePath())
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadOrDefault loads the config file, or returns defaults when missing or invalid
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
	}
	cfg.applyEnv()
	return cfg
}

// Save writes the config to SavePath
func Save(cfg *Config) error {
	path := SavePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) normalize() {
	def := Default()
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.PlaceholderWidth <= 0 {
		c.PlaceholderWidth = def.PlaceholderWidth
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = def.ProbeTimeout
	}
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
}

func (c *Config) applyEnv() {
	if p := os.Getenv("VTHUMB_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
}

// Set assigns a scalar config value by its YAML key (dotted for nested keys)
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "language":
		c.Language = value
	case "output_dir":
		c.OutputDir = value
	case "user_agent":
		c.UserAgent = value
	case "proxy":
		c.Proxy = value
	case "placeholder_width":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("placeholder_width must be a positive integer")
		}
		c.PlaceholderWidth = n
	case "probe_timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("probe_timeout must be a positive duration (e.g. 15s)")
		}
		c.ProbeTimeout = d
	case "server.port":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("server.port must be between 1 and 65535")
		}
		c.Server.Port = n
	case "server.history":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("server.history must be true or false")
		}
		c.Server.History = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetWebDAVServer returns the named remote or nil
func (c *Config) GetWebDAVServer(name string) *WebDAVServer {
	if c.WebDAVServers == nil {
		return nil
	}
	s, ok := c.WebDAVServers[name]
	if !ok {
		return nil
	}
	return &s
}

// SetWebDAVServer adds or replaces a named remote
func (c *Config) SetWebDAVServer(name string, s WebDAVServer) {
	if c.WebDAVServers == nil {
		c.WebDAVServers = make(map[string]WebDAVServer)
	}
	c.WebDAVServers[name] = s
}

// DeleteWebDAVServer removes a named remote
func (c *Config) DeleteWebDAVServer(name string) {
	delete(c.WebDAVServers, name)
}
