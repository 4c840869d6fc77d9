package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/specdex/internal/domain/search/predicate"
)

// Config holds the specdex configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Search     SearchConfig     `yaml:"search"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds catalog store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout settings.
type StorageConfig struct {
	KeyPrefix    string `yaml:"key_prefix"`     // catalog records
	RunKeyPrefix string `yaml:"run_key_prefix"` // ingestion run reports
	RunTTLHours  int    `yaml:"run_ttl_hours"`
}

// RecognizerConfig holds the OpenAI-compatible NLU endpoint settings.
type RecognizerConfig struct {
	Provider         string  `yaml:"provider"`
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	Model            string  `yaml:"model"`
	Temperature      float32 `yaml:"temperature"`
	TimeoutSec       int     `yaml:"timeout_sec"`
	MaxDocumentChars int     `yaml:"max_document_chars"`
}

// SearchConfig holds query settings.
type SearchConfig struct {
	Selectable []string `yaml:"selectable"` // fields free-text queries may constrain
	Limit      int      `yaml:"limit"`
}

// IngestConfig holds spec sheet ingestion settings.
type IngestConfig struct {
	Directory     string   `yaml:"directory"`
	Extensions    []string `yaml:"extensions"`
	Workers       int      `yaml:"workers"`
	MinConfidence float64  `yaml:"min_confidence"`
	SkipExisting  bool     `yaml:"skip_existing"`
	Pdftotext     string   `yaml:"pdftotext"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands env variables in a YAML document, applies defaults and validates it.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120 // POST /ingest runs synchronously
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "specdex:rec:"
	}
	if c.Storage.RunKeyPrefix == "" {
		c.Storage.RunKeyPrefix = "specdex:run:"
	}
	if c.Storage.RunTTLHours <= 0 {
		c.Storage.RunTTLHours = 24 * 30
	}
	if c.Recognizer.Provider == "" {
		c.Recognizer.Provider = "openai"
	}
	if c.Recognizer.Model == "" {
		c.Recognizer.Model = "gpt-4o-mini"
	}
	if c.Recognizer.TimeoutSec <= 0 {
		c.Recognizer.TimeoutSec = 60
	}
	if c.Recognizer.MaxDocumentChars <= 0 {
		c.Recognizer.MaxDocumentChars = 24000
	}
	if len(c.Search.Selectable) == 0 {
		for _, n := range predicate.DefaultSelectable {
			c.Search.Selectable = append(c.Search.Selectable, string(n))
		}
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 100
	}
	if len(c.Ingest.Extensions) == 0 {
		c.Ingest.Extensions = []string{"pdf", "txt"}
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.Pdftotext == "" {
		c.Ingest.Pdftotext = "pdftotext"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "redis" {
		return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Recognizer.Temperature < 0 || c.Recognizer.Temperature > 2 {
		return fmt.Errorf("recognizer.temperature must be between 0 and 2, got %v", c.Recognizer.Temperature)
	}
	if _, err := predicate.ParseSelection(c.Search.Selectable); err != nil {
		return fmt.Errorf("search.selectable: %w", err)
	}
	if c.Ingest.MinConfidence < 0 || c.Ingest.MinConfidence > 1 {
		return fmt.Errorf("ingest.min_confidence must be between 0 and 1, got %v", c.Ingest.MinConfidence)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file: internal/config -> project root
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
