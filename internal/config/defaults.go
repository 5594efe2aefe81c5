package config

import "time"

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Default values for optional configuration fields.
const (
	DefaultPort            = 8000
	DefaultEnvironment     = EnvDevelopment
	DefaultLogLevel        = "info"
	DefaultMaxUploadBytes  = 10 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCORSMaxAge      = 12 * time.Hour
)

var (
	DefaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	DefaultAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	DefaultAllowedHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
)

// Default returns a configuration with every field at its default
func Default() *Config {
	cfg := &Config{
		CORS: CORSConfig{AllowCredentials: true},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = append([]string(nil), DefaultAllowedMethods...)
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = append([]string(nil), DefaultAllowedHeaders...)
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = DefaultCORSMaxAge
	}
}
