package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Sync     SyncConfig
	Vault    VaultConfig
	Redis    RedisConfig
	DB       DBConfig
	Server   ServerConfig
	Log      LogConfig
	Tracing  TracingConfig
	Networks NetworksConfig
	Wallets  WalletsConfig
}

type SyncConfig struct {
	// DebounceWindow is the coalescing window for debounced operations.
	DebounceWindow time.Duration
	// TopTokenLimit caps how many network-wide top tokens FetchTokens pulls.
	TopTokenLimit int
	// PollInterval paces the daemon's background refresh loop.
	PollInterval time.Duration
}

type VaultConfig struct {
	RPS     float64
	Burst   int
	Timeout time.Duration

	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerOpenTimeout      time.Duration
}

type RedisConfig struct {
	// URL enables the snapshot mirror stream when non-empty.
	URL    string
	Stream string
}

type DBConfig struct {
	// URL enables the persistent custom-token repository when non-empty.
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ServerConfig struct {
	HealthPort int
}

type LogConfig struct {
	Level string
}

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type NetworksConfig struct {
	// File points at the YAML network catalog.
	File string
}

type WalletsConfig struct {
	// File points at the YAML wallet file.
	File string
}

func Load() (*Config, error) {
	cfg := &Config{
		Sync: SyncConfig{
			DebounceWindow: time.Duration(getEnvInt("SYNC_DEBOUNCE_WINDOW_MS", 600)) * time.Millisecond,
			TopTokenLimit:  getEnvInt("SYNC_TOP_TOKEN_LIMIT", 50),
			PollInterval:   time.Duration(getEnvInt("SYNC_POLL_INTERVAL_SEC", 30)) * time.Second,
		},
		Vault: VaultConfig{
			RPS:                     getEnvFloat("VAULT_RPS", 10),
			Burst:                   getEnvInt("VAULT_BURST", 20),
			Timeout:                 time.Duration(getEnvInt("VAULT_TIMEOUT_SEC", 30)) * time.Second,
			BreakerFailureThreshold: getEnvInt("VAULT_BREAKER_FAILURES", 5),
			BreakerSuccessThreshold: getEnvInt("VAULT_BREAKER_SUCCESSES", 2),
			BreakerOpenTimeout:      time.Duration(getEnvInt("VAULT_BREAKER_OPEN_SEC", 30)) * time.Second,
		},
		Redis: RedisConfig{
			URL:    getEnv("REDIS_URL", ""),
			Stream: getEnv("REDIS_SNAPSHOT_STREAM", "walletsync:snapshots"),
		},
		DB: DBConfig{
			URL:             getEnv("DB_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		},
		Server: ServerConfig{
			HealthPort: getEnvInt("HEALTH_PORT", 8080),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTLP_INSECURE", true),
			SampleRatio: getEnvFloat("OTLP_SAMPLE_RATIO", 1),
		},
		Networks: NetworksConfig{
			File: getEnv("NETWORKS_FILE", "networks.yaml"),
		},
		Wallets: WalletsConfig{
			File: getEnv("WALLETS_FILE", "wallets.yaml"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sync.DebounceWindow <= 0 {
		return fmt.Errorf("SYNC_DEBOUNCE_WINDOW_MS must be positive")
	}
	if c.Sync.TopTokenLimit <= 0 {
		return fmt.Errorf("SYNC_TOP_TOKEN_LIMIT must be positive")
	}
	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("SYNC_POLL_INTERVAL_SEC must be positive")
	}
	if c.Vault.RPS <= 0 {
		return fmt.Errorf("VAULT_RPS must be positive")
	}
	if c.Networks.File == "" {
		return fmt.Errorf("NETWORKS_FILE is required")
	}
	if c.Wallets.File == "" {
		return fmt.Errorf("WALLETS_FILE is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
