package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Configs interface {
	Peek() *Config
}

type configs struct {
	cfg *Config
}

func New() (Configs, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	return &configs{cfg: cfg}, nil
}

// Static wraps an already built Config, used by tests and tools.
func Static(cfg *Config) Configs {
	return &configs{cfg: cfg}
}

func (c *configs) Peek() *Config {
	return c.cfg
}

type Config struct {
	Env      string
	Debug    bool
	LogLevel string
	Timezone string

	HTTP      HTTP
	Database  Database
	JWT       JWT
	Redis     Redis
	RateLimit RateLimit
	CORS      CORS
}

type HTTP struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (h HTTP) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

type Database struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxConcurrent   int
}

// DSN prefers DATABASE_URL and falls back to the discrete fields.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type JWT struct {
	Secret        string
	Algorithm     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RefreshCookie string
}

type Redis struct {
	URL string
}

type RateLimit struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type CORS struct {
	AllowedOrigins []string
}

// Load reads .env (if present), then config files, then the process environment.
// Environment variables win over file values.
func Load(paths ...string) (*Config, error) {
	v, err := read(paths)
	if err != nil {
		return nil, err
	}

	cfg := build(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database section. Tools that never serve HTTP
// use it so they do not need JWT or Redis settings.
func LoadDatabase(paths ...string) (Database, error) {
	v, err := read(paths)
	if err != nil {
		return Database{}, err
	}

	return build(v).Database, nil
}

func read(paths []string) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	for _, p := range paths {
		v.SetConfigFile(p)
	}
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if len(paths) > 0 || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func build(v *viper.Viper) *Config {
	return &Config{
		Env:      v.GetString("APP_ENV"),
		Debug:    v.GetBool("DEBUG"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		Timezone: v.GetString("APP_TIMEZONE"),
		HTTP: HTTP{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
		},
		Database: Database{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
			MaxConcurrent:   v.GetInt("DATABASE_MAX_CONCURRENT"),
		},
		JWT: JWT{
			Secret:        v.GetString("JWT_SECRET_KEY"),
			Algorithm:     strings.ToUpper(v.GetString("ALGORITHM")),
			AccessTTL:     time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
			RefreshTTL:    time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRE_DAYS")) * 24 * time.Hour,
			RefreshCookie: "refresh_token",
		},
		Redis: Redis{
			URL: v.GetString("REDIS_URL"),
		},
		RateLimit: RateLimit{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			Limit:   v.GetInt("ANTI_DDOS_RATE_LIMIT"),
			Window:  time.Duration(v.GetInt("ANTI_DDOS_RATE_WINDOW")) * time.Second,
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "UTC")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8000)
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "15s")
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_NAME", "pomodoro")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 30)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_MAX_CONCURRENT", 10)

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)

	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("ANTI_DDOS_RATE_LIMIT", 100)
	v.SetDefault("ANTI_DDOS_RATE_WINDOW", 60)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET_KEY must not be empty")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.JWT.Algorithm)
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("ANTI_DDOS_RATE_LIMIT and ANTI_DDOS_RATE_WINDOW must be positive")
	}
	if c.Database.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid DATABASE_MAX_CONCURRENT %d", c.Database.MaxConcurrent)
	}

	return nil
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
