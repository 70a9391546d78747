package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type App struct {
	Host string
	Port string
	Env  string
}

type DB struct {
	Driver   string // mysql or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	// Path is the sqlite file (or ":memory:") when Driver is sqlite.
	Path string
}

type Cache struct {
	Host     string
	Port     int
	Password string
}

type JWT struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type RateLimit struct {
	Max        int
	Expiration time.Duration
}

type Config struct {
	App        App
	DB         DB
	Cache      Cache
	JWT        JWT
	RateLimit  RateLimit
	ContentDir string
	// MaxUploadBytes bounds the fiber request body and a single upload.
	MaxUploadBytes int
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.App.Host, c.App.Port)
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.App.Env == "dev"
}

// Load reads the configuration from the process environment. env.SetupEnvFile
// should run first so values from .env are visible here.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_HOST", "localhost")
	v.SetDefault("APP_PORT", "4000")
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "pixelboard")
	v.SetDefault("DB_PATH", "pixelboard.db")
	v.SetDefault("CACHE_HOST", "")
	v.SetDefault("CACHE_PORT", 6379)
	v.SetDefault("CACHE_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "pixelboard")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RATE_LIMIT_MAX", 120)
	v.SetDefault("RATE_LIMIT_EXPIRATION", "1m")
	v.SetDefault("CONTENT_DIR", "uploads/images")
	v.SetDefault("MAX_UPLOAD_BYTES", 20*1024*1024)

	cfg := &Config{
		App: App{
			Host: v.GetString("APP_HOST"),
			Port: v.GetString("APP_PORT"),
			Env:  v.GetString("APP_ENV"),
		},
		DB: DB{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Path:     v.GetString("DB_PATH"),
		},
		Cache: Cache{
			Host:     v.GetString("CACHE_HOST"),
			Port:     v.GetInt("CACHE_PORT"),
			Password: v.GetString("CACHE_PASSWORD"),
		},
		JWT: JWT{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		RateLimit: RateLimit{
			Max:        v.GetInt("RATE_LIMIT_MAX"),
			Expiration: v.GetDuration("RATE_LIMIT_EXPIRATION"),
		},
		ContentDir:     v.GetString("CONTENT_DIR"),
		MaxUploadBytes: v.GetInt("MAX_UPLOAD_BYTES"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if !c.IsDev() {
			return fmt.Errorf("JWT_SECRET is required outside of dev mode")
		}
		c.JWT.Secret = "dev-secret"
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 24 * time.Hour
	}
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR must not be empty")
	}
	if c.RateLimit.Max <= 0 {
		c.RateLimit.Max = 120
	}
	if c.RateLimit.Expiration <= 0 {
		c.RateLimit.Expiration = time.Minute
	}
	return nil
}
