package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LogLevel string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Messaging MessagingConfig `koanf:"messaging"`
	Auth      AuthConfig      `koanf:"auth"`
}

type ServerConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	Migrate         bool          `koanf:"migrate"`
}

// MessagingConfig описывает внешний сервис мессенджера.
// Таймаут задается в секундах, как в переменной окружения.
type MessagingConfig struct {
	BaseURL        string  `koanf:"base_url"`
	APIKey         string  `koanf:"api_key"`
	TimeoutSeconds int     `koanf:"timeout"`
	MaxRetries     int     `koanf:"max_retries"`
	RateLimit      float64 `koanf:"rate_limit"`
}

func (m MessagingConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
}

// envKeys сопоставляет переменные окружения ключам конфигурации
var envKeys = map[string]string{
	"LOG_LEVEL":                     "log_level",
	"SERVER_ADDRESS":                "server.address",
	"POSTGRES_CONN":                 "database.url",
	"DATABASE_MIGRATE":              "database.migrate",
	"MESSAGING_SERVICE_BASEURL":     "messaging.base_url",
	"MESSAGING_SERVICE_API_KEY":     "messaging.api_key",
	"MESSAGING_SERVICE_TIMEOUT":     "messaging.timeout",
	"MESSAGING_SERVICE_MAX_RETRIES": "messaging.max_retries",
	"MESSAGING_SERVICE_RATE_LIMIT":  "messaging.rate_limit",
	"JWT_SECRET":                    "auth.jwt_secret",
	"JWT_ISSUER":                    "auth.issuer",
}

func Defaults() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Address:         "0.0.0.0:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			Migrate:         true,
		},
		Messaging: MessagingConfig{
			BaseURL:        "http://localhost:3000",
			TimeoutSeconds: 10,
			MaxRetries:     3,
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML файл
// (если путь задан и файл существует), затем переменные окружения.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv("AUCTIONS_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Messaging.BaseURL = strings.TrimSpace(cfg.Messaging.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("POSTGRES_CONN env variable is not set")
	}
	if c.Messaging.BaseURL == "" {
		return errors.New("messaging base url is empty")
	}
	if c.Messaging.TimeoutSeconds <= 0 {
		return fmt.Errorf("messaging timeout must be positive, got %d", c.Messaging.TimeoutSeconds)
	}
	if c.Messaging.MaxRetries < 0 {
		return fmt.Errorf("messaging max retries must not be negative, got %d", c.Messaging.MaxRetries)
	}
	return nil
}
