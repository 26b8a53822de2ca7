package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "novelhub"
	configFileName = "config.yaml"

	DefaultAPIURL    = "http://localhost:8080/api/v1"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"
)

// Credential backends
const (
	CredentialsKeyring = "keyring"
	CredentialsFile    = "file"
	CredentialsMemory  = "memory"
)

// Config is the CLI's local configuration stored in ~/.config/novelhub/config.yaml
type Config struct {
	APIURL         string `yaml:"api_url"`
	Credentials    string `yaml:"credentials"`
	CredentialFile string `yaml:"credential_file,omitempty"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		APIURL:      DefaultAPIURL,
		Credentials: CredentialsKeyring,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// DefaultCredentialFile is where the file backend keeps the token
func DefaultCredentialFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName, "token"), nil
}

// Load builds the configuration: defaults, then the config file, then
// .env files, then NOVELHUB_* environment variables.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a config file over the defaults. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the configuration file
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path, creating the directory if needed
func SaveFile(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NOVELHUB_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("NOVELHUB_CREDENTIALS"); v != "" {
		c.Credentials = v
	}
	if v := os.Getenv("NOVELHUB_CREDENTIAL_FILE"); v != "" {
		c.CredentialFile = v
	}
	if v := os.Getenv("NOVELHUB_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NOVELHUB_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.Credentials == "" {
		c.Credentials = def.Credentials
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
}

// Validate checks the API URL and credential backend
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an http(s) URL", c.APIURL)
	}

	switch c.Credentials {
	case CredentialsKeyring, CredentialsFile, CredentialsMemory:
	default:
		return fmt.Errorf("invalid credentials %q: must be one of keyring, file, memory", c.Credentials)
	}

	return nil
}

// Host returns the API host, used to key stored credentials per server
func (c *Config) Host() string {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return c.APIURL
	}
	return u.Host
}

// keys maps settable names to their fields
func (c *Config) keys() map[string]*string {
	return map[string]*string{
		"api_url":         &c.APIURL,
		"credentials":     &c.Credentials,
		"credential_file": &c.CredentialFile,
		"log_level":       &c.LogLevel,
		"log_format":      &c.LogFormat,
	}
}

// Keys lists the settable configuration keys
func Keys() []string {
	var names []string
	for name := range Default().keys() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of a key
func (c *Config) Get(key string) (string, error) {
	field, ok := c.keys()[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown config key '%s' (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return *field, nil
}

// Set changes a key. The result is validated before it is kept.
func (c *Config) Set(key, value string) error {
	field, ok := c.keys()[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown config key '%s' (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	old := *field
	*field = value
	if err := c.Validate(); err != nil {
		*field = old
		return err
	}
	return nil
}
