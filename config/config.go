// Package config resolves the dashboard's runtime settings from the
// environment, optionally seeded from a .env file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAddr        = "DASHBOARD_ADDR"
	EnvData        = "DASHBOARD_DATA"
	EnvLogLevel    = "DASHBOARD_LOG_LEVEL"
	EnvLogFormat   = "DASHBOARD_LOG_FORMAT"
	EnvCORSOrigins = "DASHBOARD_CORS_ORIGINS"
)

// Defaults used when a variable is unset.
const (
	DefaultAddr      = "127.0.0.1:8050"
	DefaultData      = "products-100.csv"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds everything the process needs to start.
type Config struct {
	Addr        string
	DataPath    string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string // empty allows any origin
}

// Load reads the configuration from the environment, first merging a
// .env file from the working directory if there is one. Variables that
// are already set are never overridden.
func Load() Config {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv(EnvAddr, DefaultAddr),
		DataPath:    getEnv(EnvData, DefaultData),
		LogLevel:    getEnv(EnvLogLevel, DefaultLogLevel),
		LogFormat:   getEnv(EnvLogFormat, DefaultLogFormat),
		CORSOrigins: splitList(os.Getenv(EnvCORSOrigins)),
	}
}

// LoadFile merges the variables in a .env file into the environment
// without overriding ones that are already set, then calls Load.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, err
	}
	return Load(), nil
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
