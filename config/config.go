package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benjibook/api-go/imagehost"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Database  DatabaseConfig     `yaml:"database"`
	ImageHost imagehost.R2Config `yaml:"image_host"`
	Auth      AuthConfig         `yaml:"auth"`
	Events    EventsConfig       `yaml:"events"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Env            string   `yaml:"env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory" (in-process SQLite).
	Driver       string        `yaml:"driver"`
	URL          string        `yaml:"url"`
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"ssl_mode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	GoogleRedirectURL  string        `yaml:"google_redirect_url"`
}

type EventsConfig struct {
	NATSURL       string        `yaml:"nats_url"`
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Name:         "benjibook",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,
		},
		ImageHost: imagehost.R2Config{Region: "auto"},
		Auth:      AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		Events:    EventsConfig{MaxReconnects: 10, ReconnectWait: 2 * time.Second},
	}
}

// Load reads .env files, then the YAML file named by CONFIG_FILE if set,
// then environment variables. Later sources win.
func Load() (*Config, error) {
	// Missing .env files are fine in production.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	applyEnv(cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "memory" {
		return nil, errors.Errorf("unknown STORE_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Env, "APP_ENV")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	setString(&cfg.Database.Driver, "STORE_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setInt(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS")
	setInt(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS")
	setDuration(&cfg.Database.MaxLifetime, "DB_MAX_LIFETIME")

	setString(&cfg.ImageHost.AccountID, "CLOUDFLARE_ACCOUNT_ID")
	setString(&cfg.ImageHost.AccessKeyID, "CLOUDFLARE_ACCESS_KEY_ID")
	setString(&cfg.ImageHost.SecretAccessKey, "CLOUDFLARE_SECRET_ACCESS_KEY")
	setString(&cfg.ImageHost.BucketName, "CLOUDFLARE_BUCKET_NAME")
	setString(&cfg.ImageHost.PublicURL, "CLOUDFLARE_PUBLIC_URL")
	setString(&cfg.ImageHost.Endpoint, "CLOUDFLARE_ENDPOINT")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "JWT_TTL")
	setString(&cfg.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Auth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Auth.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")

	setString(&cfg.Events.NATSURL, "NATS_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		*dst = v
	}
}
