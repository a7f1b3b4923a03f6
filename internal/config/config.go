// Package config loads the catalog server configuration with Viper from a
// YAML file, BOOKCATALOG_ environment variables and command-line flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
	"github.com/lehigh-university-libraries/bookcatalog/internal/tocstore"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix       = "BOOKCATALOG"
	DefaultFileName = "bookcatalog"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Upload  UploadConfig  `mapstructure:"upload" yaml:"upload"`
	Portal  PortalConfig  `mapstructure:"portal" yaml:"portal"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Mirror  MirrorConfig  `mapstructure:"mirror" yaml:"mirror"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port       int    `mapstructure:"port" yaml:"port"`
	BasePath   string `mapstructure:"base_path" yaml:"base_path"`
	PortalInfo string `mapstructure:"portal_info" yaml:"portal_info"`
	MarkupHead bool   `mapstructure:"markup_head" yaml:"markup_head"`
	StaticDir  string `mapstructure:"static_dir" yaml:"static_dir"`
}

type UploadConfig struct {
	Folder   string `mapstructure:"folder" yaml:"folder"`
	MaxBytes int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// PortalConfig lists what the hosting portal supports. Links to anything
// else are never generated.
type PortalConfig struct {
	SupportedModes        []string `mapstructure:"supported_modes" yaml:"supported_modes"`
	SupportedWindowStates []string `mapstructure:"supported_window_states" yaml:"supported_window_states"`
}

type CatalogConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	// Seed is a parquet file imported at startup when the catalog is empty.
	Seed string `mapstructure:"seed" yaml:"seed"`
}

type SessionConfig struct {
	Backend   string        `mapstructure:"backend" yaml:"backend"`
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type MirrorConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Secure    bool   `mapstructure:"secure" yaml:"secure"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	supportedModes := make([]string, 0, len(modes.Modes))
	for _, m := range modes.Modes {
		supportedModes = append(supportedModes, m.String())
	}
	windowStates := make([]string, 0, len(modes.WindowStates))
	for _, ws := range modes.WindowStates {
		windowStates = append(windowStates, ws.String())
	}

	return &Config{
		Server: ServerConfig{
			Port:       8888,
			BasePath:   "/portlet",
			PortalInfo: "bookcatalog",
			MarkupHead: true,
			StaticDir:  "static",
		},
		Upload: UploadConfig{
			Folder:   "toc",
			MaxBytes: upload.DefaultMaxBytes,
		},
		Portal: PortalConfig{
			SupportedModes:        supportedModes,
			SupportedWindowStates: windowStates,
		},
		Catalog: CatalogConfig{
			Driver: "memory",
		},
		Session: SessionConfig{
			Backend: SessionMemory,
			TTL:     30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every key with viper so environment variables can
// override keys that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.base_path", d.Server.BasePath)
	v.SetDefault("server.portal_info", d.Server.PortalInfo)
	v.SetDefault("server.markup_head", d.Server.MarkupHead)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("upload.folder", d.Upload.Folder)
	v.SetDefault("upload.max_bytes", d.Upload.MaxBytes)
	v.SetDefault("portal.supported_modes", d.Portal.SupportedModes)
	v.SetDefault("portal.supported_window_states", d.Portal.SupportedWindowStates)
	v.SetDefault("catalog.driver", d.Catalog.Driver)
	v.SetDefault("catalog.dsn", d.Catalog.DSN)
	v.SetDefault("catalog.seed", d.Catalog.Seed)
	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.redis_addr", d.Session.RedisAddr)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("mirror.endpoint", "")
	v.SetDefault("mirror.bucket", "")
	v.SetDefault("mirror.access_key", "")
	v.SetDefault("mirror.secret_key", "")
	v.SetDefault("mirror.secure", false)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Init points v at a config file and the BOOKCATALOG_ environment. A missing
// config file is not an error.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(DefaultFileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	slog.Debug("Using config file", "path", v.ConfigFileUsed())
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Environment variables arrive as a single space separated string.
	cfg.Portal.SupportedModes = splitList(cfg.Portal.SupportedModes)
	cfg.Portal.SupportedWindowStates = splitList(cfg.Portal.SupportedWindowStates)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' '
		})...)
	}
	return out
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Upload.Folder == "" {
		return fmt.Errorf("upload.folder is required")
	}
	for _, m := range c.Portal.SupportedModes {
		if _, ok := modes.ParseMode(m); !ok {
			return fmt.Errorf("portal.supported_modes: unknown mode %q", m)
		}
	}
	for _, ws := range c.Portal.SupportedWindowStates {
		if _, ok := modes.ParseWindowState(ws); !ok {
			return fmt.Errorf("portal.supported_window_states: unknown window state %q", ws)
		}
	}
	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend)
	}
	return nil
}

// Modes returns the supported portlet modes.
func (c *Config) Modes() []modes.Mode {
	out := make([]modes.Mode, 0, len(c.Portal.SupportedModes))
	for _, s := range c.Portal.SupportedModes {
		if m, ok := modes.ParseMode(s); ok {
			out = append(out, m)
		}
	}
	return out
}

// WindowStates returns the supported window states.
func (c *Config) WindowStates() []modes.WindowState {
	out := make([]modes.WindowState, 0, len(c.Portal.SupportedWindowStates))
	for _, s := range c.Portal.SupportedWindowStates {
		if ws, ok := modes.ParseWindowState(s); ok {
			out = append(out, ws)
		}
	}
	return out
}

func (c *Config) MirrorConfig() tocstore.Config {
	return tocstore.Config{
		Endpoint:  c.Mirror.Endpoint,
		Bucket:    c.Mirror.Bucket,
		AccessKey: c.Mirror.AccessKey,
		SecretKey: c.Mirror.SecretKey,
		Secure:    c.Mirror.Secure,
	}
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// WriteFile writes c to path, refusing to overwrite unless force is set.
func (c *Config) WriteFile(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
