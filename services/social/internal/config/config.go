package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type DBConfig struct {
	URL         string
	MaxConns    int
	AutoMigrate bool
}

type GRPCConfig struct {
	Addr string
}

// EventsConfig is empty-URL disabled.
type EventsConfig struct {
	NATSURL string
	Stream  string
}

type PagingConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// SeedConfig pre-populates the in-memory directory outside production.
type SeedConfig struct {
	Users  []string
	Movies []string
}

type Config struct {
	DB        DBConfig
	GRPC      GRPCConfig
	Events    EventsConfig
	Paging    PagingConfig
	Seed      SeedConfig
	JWT       JWTConfig
}

// JWTConfig validates tokens minted by the auth service.
type JWTConfig struct {
	Secret string
	Issuer string        // empty skips the iss check
	Leeway time.Duration // clock skew allowance for exp/nbf
}

func LoadJWT() JWTConfig {
	return JWTConfig{
		Secret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		Issuer: strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		Leeway: envDuration("JWT_LEEWAY", 30*time.Second),
	}
}

func LoadDB() DBConfig {
	return DBConfig{
		URL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxConns:    envInt("DB_MAX_CONNS", 10),
		AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
	}
}

func LoadGRPC() GRPCConfig {
	addr := strings.TrimSpace(os.Getenv("GRPC_ADDR"))
	if addr == "" {
		addr = ":9094"
	}
	return GRPCConfig{Addr: addr}
}

func LoadEvents() EventsConfig {
	stream := strings.TrimSpace(os.Getenv("SOCIAL_EVENTS_STREAM"))
	if stream == "" {
		stream = "SOCIAL_EVENTS"
	}
	return EventsConfig{NATSURL: strings.TrimSpace(os.Getenv("NATS_URL")), Stream: stream}
}

func LoadPaging() PagingConfig {
	return PagingConfig{
		DefaultPageSize: envInt("SOCIAL_DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     envInt("SOCIAL_MAX_PAGE_SIZE", 100),
	}
}

func LoadSeed() SeedConfig {
	return SeedConfig{
		Users:  envList("SOCIAL_SEED_USERS"),
		Movies: envList("SOCIAL_SEED_MOVIES"),
	}
}

// Load reads the social service settings. In production a database and a
// JWT secret are mandatory.
func Load(production bool) (Config, error) {
	cfg := Config{
		DB:        LoadDB(),
		GRPC:      LoadGRPC(),
		Events:    LoadEvents(),
		Paging:    LoadPaging(),
		Seed:      LoadSeed(),
		JWT:       LoadJWT(),
	}
	if cfg.Paging.DefaultPageSize < 1 || cfg.Paging.MaxPageSize < 1 {
		return Config{}, errors.New("page sizes must be positive")
	}
	if cfg.Paging.DefaultPageSize > cfg.Paging.MaxPageSize {
		return Config{}, errors.New("SOCIAL_DEFAULT_PAGE_SIZE exceeds SOCIAL_MAX_PAGE_SIZE")
	}
	if production {
		if cfg.DB.URL == "" {
			return Config{}, errors.New("DATABASE_URL is required in production")
		}
		if cfg.JWT.Secret == "" {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
	}
	return cfg, nil
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
