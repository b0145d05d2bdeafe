package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs      LogConfig
	Server    ServerConfig
	AOE4World AOE4WorldConfig
	Storage   StorageConfig
	Sessions  SessionConfig
	DB        PostgresConfig
	Archive   ArchiveConfig
	Auth      AuthConfig
	QueueURL  string
}

type LogConfig struct {
	Style string
	Level string
}

type ServerConfig struct {
	Addr            string
	AssetsDir       string
	CORSOrigins     []string
	DefaultPlayerID string
	// DisplayTimezone is an IANA zone name; empty means the host's local zone.
	DisplayTimezone string
}

type AOE4WorldConfig struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	RecentLimit int
}

type StorageConfig struct {
	DataDir string
}

type SessionConfig struct {
	RedisURL string
	TTL      time.Duration
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Name     string
}

// Enabled reports whether a Postgres host was configured.
func (p PostgresConfig) Enabled() bool { return p.URL != "" }

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s", p.Username, p.Password, p.URL, p.Port)
	if p.Name != "" {
		dsn += "/" + p.Name
	}
	return dsn
}

type ArchiveConfig struct {
	Bucket string
	Prefix string
}

type AuthConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
}

// Enabled reports whether bearer auth should guard the write API.
func (a AuthConfig) Enabled() bool { return a.Issuer != "" }

const (
	DefaultAddr        = "0.0.0.0:8080"
	DefaultBaseURL     = "https://aoe4world.com"
	DefaultUserAgent   = "AOE4MatchReviewer/0.1"
	DefaultDataDir     = "./data"
	DefaultRecentLimit = 10
)

func LoadConfig() (*Config, error) {
	timeoutSeconds, err := intFromEnv("AOE4WORLD_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}

	recentLimit, err := intFromEnv("RECENT_MATCH_LIMIT", DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	if recentLimit <= 0 {
		return nil, fmt.Errorf("RECENT_MATCH_LIMIT must be positive, got %d", recentLimit)
	}

	sessionMinutes, err := intFromEnv("SESSION_TTL_MINUTES", 120)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		Logs: LogConfig{
			Style: os.Getenv("LOG_STYLE"),
			Level: os.Getenv("LOG_LEVEL"),
		},
		Server: ServerConfig{
			Addr:            stringFromEnv("SERVER_ADDR", DefaultAddr),
			AssetsDir:       stringFromEnv("ASSETS_DIR", "./assets"),
			CORSOrigins:     splitList(stringFromEnv("CORS_ORIGINS", "*")),
			DefaultPlayerID: strings.TrimSpace(os.Getenv("DEFAULT_PLAYER_ID")),
			DisplayTimezone: strings.TrimSpace(os.Getenv("DISPLAY_TIMEZONE")),
		},
		AOE4World: AOE4WorldConfig{
			BaseURL:     strings.TrimRight(stringFromEnv("AOE4WORLD_BASE_URL", DefaultBaseURL), "/"),
			UserAgent:   stringFromEnv("AOE4WORLD_USER_AGENT", DefaultUserAgent),
			Timeout:     time.Duration(timeoutSeconds) * time.Second,
			RecentLimit: recentLimit,
		},
		Storage: StorageConfig{
			DataDir: stringFromEnv("DATA_DIR", DefaultDataDir),
		},
		Sessions: SessionConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      time.Duration(sessionMinutes) * time.Minute,
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     stringFromEnv("POSTGRES_PORT", "5432"),
			Name:     os.Getenv("POSTGRES_DB"),
		},
		Archive: ArchiveConfig{
			Bucket: os.Getenv("ARCHIVE_BUCKET"),
			Prefix: stringFromEnv("ARCHIVE_PREFIX", "matches/"),
		},
		Auth: AuthConfig{
			Issuer:   strings.TrimSpace(os.Getenv("AUTH_ISSUER")),
			Audience: strings.TrimSpace(os.Getenv("AUTH_AUDIENCE")),
			JWKSURL:  strings.TrimSpace(os.Getenv("AUTH_JWKS_URL")),
		},
	}

	return cfg, nil
}

// Location resolves the display time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.DisplayTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Server.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
	}
	return loc, nil
}

func stringFromEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("error converting string to int: %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
