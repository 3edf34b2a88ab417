package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the client settings. Everything is env-driven with working
// defaults; a .env file in the working directory is honored when present.
type Config struct {
	APIBaseURL  string
	StateDir    string
	HTTPTimeout time.Duration
	Debug       bool
}

// Load reads configuration from the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL:  getenv("CONNECTWORK_API_URL", "http://localhost:3000"),
		StateDir:    getenv("CONNECTWORK_STATE_DIR", defaultStateDir()),
		HTTPTimeout: getenvDuration("CONNECTWORK_HTTP_TIMEOUT", 15*time.Second),
		Debug:       getenvBool("CONNECTWORK_DEBUG", false),
	}
}

// DBPath returns the session database path inside the state directory.
func (c Config) DBPath() string {
	return filepath.Join(c.StateDir, "connectwork.db")
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "connectwork")
	}
	return "."
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
