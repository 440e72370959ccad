package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures Reddit credentials, API tuning, batch behavior, and surfaces.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	API         APIConfig         `yaml:"api"`
	Batch       BatchConfig       `yaml:"batch"`
	Server      ServerConfig      `yaml:"server"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Storage     StorageConfig     `yaml:"storage"`
}

type CredentialsConfig struct {
	// Reddit script-app credentials. If empty, read from env
	// REDDIT_CLIENT_ID / REDDIT_CLIENT_SECRET.
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

type APIConfig struct {
	// Requests per second and burst for the upstream limiter
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// Retry policy for rate-limited and transient failures
	MaxAttempts    int           `yaml:"maxAttempts"`
	BaseBackoff    time.Duration `yaml:"baseBackoff"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	UserAgent      string        `yaml:"userAgent"`
}

type BatchConfig struct {
	// Upper bound on concurrent per-user pipelines; the effective cap is
	// min(len(usernames), MaxConcurrency)
	MaxConcurrency int `yaml:"maxConcurrency"`
	// Per-user deadline; a timed-out user is treated as a failed fetch
	UserTimeout time.Duration `yaml:"userTimeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	// Prometheus listen address, e.g. ":9090". Empty disables the server.
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	// SQLite path for batch run history. Empty disables recording.
	DBPath string `yaml:"dbPath"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Credentials: CredentialsConfig{},
		API: APIConfig{
			RPS:            1,
			Burst:          5,
			MaxAttempts:    3,
			BaseBackoff:    time.Second,
			RequestTimeout: 15 * time.Second,
			UserAgent:      "redditscout/0.1 (analytics toolkit)",
		},
		Batch: BatchConfig{
			MaxConcurrency: 5,
			UserTimeout:    20 * time.Second,
		},
		Server:  ServerConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Addr: ""},
		Storage: StorageConfig{DBPath: "./redditscout.db"},
	}
}

// LoadEnvFile loads a .env style file if present; missing files are fine.
func LoadEnvFile(path string) {
	if path == "" {
		path = ".env"
	}
	_ = gotenv.Load(path)
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.ClientID == "" {
		c.Credentials.ClientID = os.Getenv("REDDIT_CLIENT_ID")
	}
	if c.Credentials.ClientSecret == "" {
		c.Credentials.ClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	}
	if v := os.Getenv("REDDITSCOUT_METRICS_ADDR"); v != "" && c.Metrics.Addr == "" {
		c.Metrics.Addr = v
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
