// Package config loads collage settings from a TOML file and the
// environment.
//
// Values are resolved in order: built-in defaults, then the config file
// (if present), then environment variables:
//
//	UNSPLASH_ACCESS_KEY  unsplash.access_key
//	UNSPLASH_BASE_URL    unsplash.base_url
//	PORT                 server.addr (as ":PORT")
//	COLLAGE_CACHE        cache.backend
//	REDIS_ADDR           cache.redis.addr
//	MONGO_URI            cache.mongo.uri
//
// The default file lives at $XDG_CONFIG_HOME/collage/config.toml
// (~/.config/collage/config.toml).
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/integrations/unsplash"
	"github.com/matzehuels/collage/pkg/session"
)

// AppName names the config and cache directories.
const AppName = "collage"

// Duration is a time.Duration written as a string ("800ms") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete configuration.
type Config struct {
	Unsplash UnsplashConfig `toml:"unsplash"`
	Layout   LayoutConfig   `toml:"layout"`
	Session  SessionConfig  `toml:"session"`
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
}

type UnsplashConfig struct {
	BaseURL   string   `toml:"base_url"`
	AccessKey string   `toml:"access_key"`
	PerPage   int      `toml:"per_page"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

type LayoutConfig struct {
	TileWidth   float64 `toml:"tile_width"`
	TileHeight  float64 `toml:"tile_height"`
	MaxAttempts int     `toml:"max_attempts"`
	MaxTilt     float64 `toml:"max_tilt"`
}

type SessionConfig struct {
	InitialQuery string   `toml:"initial_query"`
	DefaultQuery string   `toml:"default_query"`
	QueryWords   int      `toml:"query_words"`
	Debounce     Duration `toml:"debounce"`
	ExitDelay    Duration `toml:"exit_delay"`
	TTL          Duration `toml:"ttl"`
	MaxSessions  int      `toml:"max_sessions"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	IdleTimeout    Duration `toml:"idle_timeout"`
	RequestTimeout Duration `toml:"request_timeout"`
	ViewportWidth  float64  `toml:"viewport_width"`
	ViewportHeight float64  `toml:"viewport_height"`
}

type CacheConfig struct {
	Backend    string            `toml:"backend"`
	Dir        string            `toml:"dir"`
	MemorySize int               `toml:"memory_size"`
	Redis      cache.RedisConfig `toml:"redis"`
	Mongo      cache.MongoConfig `toml:"mongo"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Unsplash: UnsplashConfig{
			BaseURL:  unsplash.DefaultBaseURL,
			PerPage:  unsplash.DefaultPerPage,
			CacheTTL: Duration{unsplash.DefaultCacheTTL},
		},
		Layout: LayoutConfig{
			TileWidth:   collage.DefaultTileWidth,
			TileHeight:  collage.DefaultTileHeight,
			MaxAttempts: collage.DefaultMaxAttempts,
			MaxTilt:     collage.DefaultMaxTilt,
		},
		Session: SessionConfig{
			InitialQuery: session.DefaultInitialQuery,
			DefaultQuery: session.DefaultQuery,
			QueryWords:   session.DefaultQueryWords,
			Debounce:     Duration{800 * time.Millisecond},
			ExitDelay:    Duration{300 * time.Millisecond},
			TTL:          Duration{session.DefaultTTL},
			MaxSessions:  session.DefaultStoreSize,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    Duration{15 * time.Second},
			WriteTimeout:   Duration{30 * time.Second},
			IdleTimeout:    Duration{60 * time.Second},
			RequestTimeout: Duration{20 * time.Second},
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Cache: CacheConfig{
			Backend:    cache.BackendFile,
			MemorySize: cache.DefaultMemorySize,
			Mongo: cache.MongoConfig{
				Database:   AppName,
				Collection: "cache",
			},
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns the file cache directory (~/.cache/collage/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads path, applies the environment and validates the result.
// An empty path reads the default location, where a missing file is not an
// error. An explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !stderrors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return nil
}

// ApplyEnv overrides fields from the environment variables listed in the
// package documentation. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Unsplash.AccessKey, "UNSPLASH_ACCESS_KEY")
	set(&c.Unsplash.BaseURL, "UNSPLASH_BASE_URL")
	set(&c.Cache.Backend, "COLLAGE_CACHE")
	set(&c.Cache.Redis.Addr, "REDIS_ADDR")
	set(&c.Cache.Mongo.URI, "MONGO_URI")
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
}

func (c *Config) finish() error {
	if c.Cache.Dir == "" && (c.Cache.Backend == "" || c.Cache.Backend == cache.BackendFile) {
		dir, err := DefaultCacheDir()
		if err != nil {
			return fmt.Errorf("cache dir: %w", err)
		}
		c.Cache.Dir = dir
	}
	return nil
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}
	switch {
	case c.Unsplash.BaseURL == "":
		return invalid("unsplash.base_url is required")
	case c.Unsplash.PerPage <= 0 || c.Unsplash.PerPage > unsplash.MaxPerPage:
		return invalid("unsplash.per_page must be between 1 and %d", unsplash.MaxPerPage)
	case c.Layout.TileWidth <= 0 || c.Layout.TileHeight <= 0:
		return invalid("layout tile size must be positive")
	case c.Layout.MaxTilt < 0:
		return invalid("layout.max_tilt must not be negative")
	case c.Session.QueryWords <= 0:
		return invalid("session.query_words must be positive")
	case c.Session.InitialQuery == "" || c.Session.DefaultQuery == "":
		return invalid("session queries must not be empty")
	case c.Session.Debounce.Duration < 0 || c.Session.ExitDelay.Duration < 0:
		return invalid("session delays must not be negative")
	case c.Server.ViewportWidth <= 0 || c.Server.ViewportHeight <= 0:
		return invalid("server viewport must be positive")
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendMemory, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return invalid("cache.redis.addr is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.Mongo.URI == "" {
			return invalid("cache.mongo.uri is required for the mongo backend")
		}
	default:
		return invalid("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CollageConfig converts the layout section.
func (c Config) CollageConfig() collage.Config {
	return collage.Config{
		TileSize:    geom.Size{Width: c.Layout.TileWidth, Height: c.Layout.TileHeight},
		MaxAttempts: c.Layout.MaxAttempts,
		MaxTilt:     c.Layout.MaxTilt,
	}
}

// ControllerConfig converts the session section.
func (c Config) ControllerConfig() session.Config {
	return session.Config{QueryWords: c.Session.QueryWords, DefaultQuery: c.Session.DefaultQuery}
}

// UnsplashClientConfig converts the unsplash section.
func (c Config) UnsplashClientConfig() unsplash.Config {
	return unsplash.Config{
		BaseURL:   c.Unsplash.BaseURL,
		AccessKey: c.Unsplash.AccessKey,
		PerPage:   c.Unsplash.PerPage,
		CacheTTL:  c.Unsplash.CacheTTL.Duration,
	}
}

// CacheOptions converts the cache section.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:    c.Cache.Backend,
		Dir:        c.Cache.Dir,
		MemorySize: c.Cache.MemorySize,
		Redis:      c.Cache.Redis,
		Mongo:      c.Cache.Mongo,
	}
}

// Viewport returns the server's default viewport size.
func (c Config) Viewport() geom.Size {
	return geom.Size{Width: c.Server.ViewportWidth, Height: c.Server.ViewportHeight}
}
