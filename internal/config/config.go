package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	zog "github.com/Oudwins/zog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the service needs at construction time
type Config struct {
	Port            int           `json:"port" yaml:"port"`
	Environment     string        `json:"environment" yaml:"environment"`
	LogLevel        string        `json:"log_level" yaml:"log_level"`
	MaxUploadBytes  int64         `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORS            CORSConfig    `json:"cors" yaml:"cors"`
}

// CORSConfig lists what browsers may send to the API
type CORSConfig struct {
	AllowedOrigins   []string      `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string      `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string      `json:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool          `json:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           time.Duration `json:"max_age" yaml:"max_age"`
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Load builds the configuration: defaults, then the optional file named by
// path (or CONFIG_FILE), then .env and environment variables.
func Load(path string) (*Config, error) {
	// A missing .env is fine; plain environment variables still apply
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadFile reads YAML, falling back to JSON
func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, c); err != nil {
		if jerr := json.Unmarshal(raw, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []string

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid PORT: %v", err))
		} else {
			c.Port = port
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid MAX_UPLOAD_BYTES: %v", err))
		} else {
			c.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid SHUTDOWN_TIMEOUT: %v", err))
		} else {
			c.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CORS_ALLOW_CREDENTIALS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid CORS_ALLOW_CREDENTIALS: %v", err))
		} else {
			c.CORS.AllowCredentials = b
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

var configShape = zog.Struct(zog.Shape{
	"Port":           zog.Int().Required().GT(0).LTE(65535),
	"Environment":    zog.String().Required().OneOf([]string{EnvDevelopment, EnvProduction, EnvTest}),
	"LogLevel":       zog.String().Required().OneOf([]string{"trace", "debug", "info", "warn", "error"}),
	"MaxUploadBytes": zog.Int64().Required().GT(0),
})

// Validate checks ranges and enumerations after defaults are applied
func (c *Config) Validate() error {
	var msgs []string

	issues := configShape.Validate(c)
	keys := make([]string, 0, len(issues))
	for k := range issues {
		if strings.HasPrefix(k, "$") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, issue := range issues[k] {
			msgs = append(msgs, fmt.Sprintf("%s: %s", k, issue.Message))
		}
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		msgs = append(msgs, "cors.allowed_origins: at least one origin is required")
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" && c.CORS.AllowCredentials {
			msgs = append(msgs, "cors.allowed_origins: wildcard origin cannot be combined with credentials")
		}
	}

	if len(msgs) > 0 {
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
