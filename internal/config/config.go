package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Addr       string
	LogLevel   slog.Level
	Database   Database
	Auth       Auth
	RateLimits RateLimits
	UserCache  UserCache
}

type Database struct {
	Driver   string
	URL      string // DATABASE_URL, takes precedence over the individual parts
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	ConnectRetries int
	ConnectDelay   time.Duration
}

type Auth struct {
	SecretKey         string
	Algorithm         string
	AccessTokenExpire time.Duration
}

type RateLimits struct {
	LoginPerMinute int
	VotePerMinute  int
}

type UserCache struct {
	Size int
	TTL  time.Duration
}

// Load reads the process configuration from the environment. It is called once
// at start; the returned value is passed down and never re-read.
func Load() (Config, error) {
	var errs []error
	get := loader{errs: &errs}

	addr := ":" + get.str("PORT", "8080")

	cfg := Config{
		Addr:     addr,
		LogLevel: get.level("LOG_LEVEL", slog.LevelInfo),
		Database: Database{
			Driver:         strings.ToLower(get.str("DATABASE_DRIVER", DriverPostgres)),
			URL:            get.str("DATABASE_URL", ""),
			Host:           get.str("DATABASE_HOSTNAME", "localhost"),
			Port:           get.str("DATABASE_PORT", "5432"),
			User:           get.str("DATABASE_USERNAME", "postgres"),
			Password:       get.str("DATABASE_PASSWORD", ""),
			Name:           get.str("DATABASE_NAME", "panda"),
			SSLMode:        get.str("DATABASE_SSLMODE", "disable"),
			ConnectRetries: get.int("DATABASE_CONNECT_RETRIES", 5),
			ConnectDelay:   get.duration("DATABASE_CONNECT_DELAY", 2*time.Second),
		},
		Auth: Auth{
			SecretKey:         get.str("SECRET_KEY", ""),
			Algorithm:         get.str("ALGORITHM", "HS256"),
			AccessTokenExpire: time.Duration(get.int("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		},
		RateLimits: RateLimits{
			LoginPerMinute: get.int("RATE_LIMIT_LOGIN_PER_MIN", 10),
			VotePerMinute:  get.int("RATE_LIMIT_VOTE_PER_MIN", 120),
		},
		UserCache: UserCache{
			Size: get.int("USER_CACHE_SIZE", 500),
			TTL:  get.duration("USER_CACHE_TTL", 5*time.Minute),
		},
	}

	if cfg.Auth.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if cfg.Auth.AccessTokenExpire <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if cfg.UserCache.Size <= 0 {
		errs = append(errs, errors.New("USER_CACHE_SIZE must be positive"))
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// DSN assembles the connection string for the configured driver.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		return d.Name
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type loader struct {
	errs *[]error
}

func (l loader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (l loader) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*l.errs = append(*l.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (l loader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*l.errs = append(*l.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (l loader) level(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		*l.errs = append(*l.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return lvl
}
