package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
	"tangled.sh/tangled.sh/skyline/fanout"
)

const AppName = "skyline"

type PdsConfig struct {
	// Empty means the identifier's PDS is discovered through its DID document.
	Host      string `env:"HOST"`
	PlcUrl    string `env:"PLC_URL, default=https://plc.directory"`
	UserAgent string `env:"USER_AGENT"`
	// IdentityCache is where resolved identities are kept: memory or redis.
	IdentityCache string `env:"IDENTITY_CACHE, default=memory"`
}

type CredentialsConfig struct {
	Identifier     string `env:"IDENTIFIER"`
	IdentifierFile string `env:"IDENTIFIER_FILE, default=api.id"`
	PasswordFile   string `env:"PASSWORD_FILE, default=api.key"`
}

type SessionConfig struct {
	Backend string `env:"BACKEND, default=file"`
	Path    string `env:"PATH"`
	Name    string `env:"NAME, default=default"`
}

type CursorConfig struct {
	Backend string `env:"BACKEND, default=sqlite"`
	DbPath  string `env:"DB_PATH"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR, default=localhost:6379"`
	Password string `env:"PASS"`
	DB       int    `env:"DB, default=0"`
}

func (cfg RedisConfig) ToURL() string {
	u := &url.URL{
		Scheme: "redis",
		Host:   cfg.Addr,
		Path:   fmt.Sprintf("/%d", cfg.DB),
	}

	if cfg.Password != "" {
		u.User = url.UserPassword("", cfg.Password)
	}

	return u.String()
}

type TimelineConfig struct {
	Limit int64 `env:"LIMIT, default=30"`
}

type FanoutConfig struct {
	Limit  int           `env:"LIMIT, default=8"`
	Policy fanout.Policy `env:"POLICY, default=failfast"`
}

type Config struct {
	Pds         PdsConfig         `env:",prefix=SKYLINE_PDS_"`
	Credentials CredentialsConfig `env:",prefix=SKYLINE_CREDENTIALS_"`
	Session     SessionConfig     `env:",prefix=SKYLINE_SESSION_"`
	Cursor      CursorConfig      `env:",prefix=SKYLINE_CURSOR_"`
	Redis       RedisConfig       `env:",prefix=SKYLINE_REDIS_"`
	Timeline    TimelineConfig    `env:",prefix=SKYLINE_TIMELINE_"`
	Fanout      FanoutConfig      `env:",prefix=SKYLINE_FANOUT_"`
	LogLevel    string            `env:"SKYLINE_LOG_LEVEL, default=info"`
	Color       string            `env:"SKYLINE_COLOR, default=auto"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration from l instead of the process environment.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Session.Path == "" || cfg.Cursor.DbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		if cfg.Session.Path == "" {
			cfg.Session.Path = filepath.Join(home, ".local", AppName+"_auth")
		}
		if cfg.Cursor.DbPath == "" {
			cfg.Cursor.DbPath = filepath.Join(home, ".local", AppName+".db")
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Session.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	switch cfg.Pds.IdentityCache {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown identity cache %q", cfg.Pds.IdentityCache)
	}

	switch cfg.Cursor.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown cursor backend %q", cfg.Cursor.Backend)
	}

	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q", cfg.Color)
	}

	if cfg.Timeline.Limit < 1 || cfg.Timeline.Limit > 100 {
		return fmt.Errorf("timeline limit must be between 1 and 100, got %d", cfg.Timeline.Limit)
	}

	return nil
}
