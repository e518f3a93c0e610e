// Package config loads repoexplorer settings.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults
//  2. the TOML config file ($XDG_CONFIG_HOME/repoexplorer/config.toml)
//  3. a .env file in the working directory (token only)
//  4. environment variables
//
// Command-line flags are applied by the CLI on top of the loaded Config.
// A token saved by "repoexplorer github login" is used only when no other
// source provided one; see [Config.UseSessionToken].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/repoexplorer/pkg/errors"
	"github.com/matzehuels/repoexplorer/pkg/history"
	"github.com/matzehuels/repoexplorer/pkg/integrations"
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/relay"
)

// Environment variables read by Load.
const (
	EnvToken     = "GITHUB_TOKEN"
	EnvViteToken = "VITE_GITHUB_TOKEN"
	EnvEndpoint  = "REPOEXPLORER_ENDPOINT"
	EnvProxyURL  = "REPOEXPLORER_PROXY_URL"
	EnvRedisURL  = "REPOEXPLORER_REDIS_URL"
	EnvMongoURI  = "REPOEXPLORER_MONGO_URI"
)

// TokenSource records where the token came from.
type TokenSource string

const (
	SourceNone    TokenSource = ""
	SourceFlag    TokenSource = "flag"
	SourceEnv     TokenSource = "environment"
	SourceDotEnv  TokenSource = ".env"
	SourceFile    TokenSource = "config file"
	SourceSession TokenSource = "login session"
)

// Relay cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// History backends.
const (
	HistoryFile  = "file"
	HistoryMongo = "mongo"
	HistoryNone  = "none"
)

// Config is the merged configuration.
type Config struct {
	Endpoint string        `toml:"endpoint"`
	ProxyURL string        `toml:"proxy_url"`
	Token    string        `toml:"token"`
	PageSize int           `toml:"page_size"`
	Timeout  time.Duration `toml:"timeout"`

	Relay   RelayConfig   `toml:"relay"`
	History HistoryConfig `toml:"history"`

	// TokenSource is set by Load and the CLI, never read from the file.
	TokenSource TokenSource `toml:"-"`

	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

// RelayConfig configures "repoexplorer serve".
type RelayConfig struct {
	Addr     string        `toml:"addr"`
	Cache    string        `toml:"cache"`
	CacheTTL time.Duration `toml:"cache_ttl"`
	CacheDir string        `toml:"cache_dir"`
	RedisURL string        `toml:"redis_url"`
}

// HistoryConfig selects where searched usernames are recorded.
type HistoryConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	Limit         int    `toml:"limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint: github.DefaultEndpoint,
		PageSize: github.DefaultPageSize,
		Timeout:  integrations.DefaultTimeout,
		Relay: RelayConfig{
			Addr:     relay.DefaultAddr,
			Cache:    CacheNone,
			CacheTTL: 5 * time.Minute,
		},
		History: HistoryConfig{
			Backend:       HistoryFile,
			MongoDatabase: history.DefaultDatabase,
			Limit:         history.DefaultLimit,
		},
	}
}

// Options control where Load looks.
type Options struct {
	// Path is an explicit config file. It must exist when set.
	Path string

	// DotEnv is the .env file to read. Defaults to ".env"; a missing file
	// is ignored.
	DotEnv string

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "repoexplorer", "config.toml"), nil
}

// Load builds a Config from defaults, the config file, .env and the
// environment, then validates it.
func Load(opts Options) (*Config, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.DotEnv == "" {
		opts.DotEnv = ".env"
	}

	cfg := Default()

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}
	if cfg.Token != "" {
		cfg.TokenSource = SourceFile
	}

	if err := cfg.loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}
	cfg.loadEnv(opts.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	c.Path = path
	return nil
}

func (c *Config) loadDotEnv(path string) error {
	vals, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if tok := firstNonEmpty(vals[EnvToken], vals[EnvViteToken]); tok != "" {
		c.Token = tok
		c.TokenSource = SourceDotEnv
	}
	return nil
}

func (c *Config) loadEnv(getenv func(string) string) {
	if tok := firstNonEmpty(getenv(EnvToken), getenv(EnvViteToken)); tok != "" {
		c.Token = tok
		c.TokenSource = SourceEnv
	}
	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvProxyURL)); v != "" {
		c.ProxyURL = v
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		c.Relay.RedisURL = v
	}
	if v := strings.TrimSpace(getenv(EnvMongoURI)); v != "" {
		c.History.MongoURI = v
	}
}

// SetToken applies a token given on the command line.
func (c *Config) SetToken(token string) {
	if token = strings.TrimSpace(token); token != "" {
		c.Token = token
		c.TokenSource = SourceFlag
	}
}

// UseSessionToken falls back to a saved login token when nothing else
// provided one. It reports whether the token was used.
func (c *Config) UseSessionToken(token string) bool {
	if c.Token != "" || token == "" {
		return false
	}
	c.Token = token
	c.TokenSource = SourceSession
	return true
}

// UsesProxy reports whether requests go through a relay instead of
// straight to GitHub.
func (c *Config) UsesProxy() bool {
	return c.ProxyURL != ""
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > github.MaxPageSize {
		return errors.New(errors.ErrCodeInvalidConfig, "page_size must be between 1 and %d, got %d", github.MaxPageSize, c.PageSize)
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	if err := errors.ValidateURL(c.Endpoint); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "endpoint")
	}
	if c.ProxyURL != "" {
		if err := errors.ValidateURL(c.ProxyURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "proxy_url")
		}
	}

	switch c.Relay.Cache {
	case CacheNone, CacheMemory, CacheFile:
	case CacheRedis:
		if c.Relay.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "relay.redis_url is required for the redis cache")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown relay.cache %q (want none, memory, file or redis)", c.Relay.Cache)
	}
	if c.Relay.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "relay.cache_ttl must not be negative")
	}

	switch c.History.Backend {
	case HistoryFile, HistoryNone:
	case HistoryMongo:
		if c.History.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "history.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown history.backend %q (want file, mongo or none)", c.History.Backend)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
