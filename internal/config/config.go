package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	GeocoderURL    string
	GeocoderAPIKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers    []string
	KafkaAuditTopic string

	CORSOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:            get("PORT", "8080"),
		Env:             get("APP_ENV", "development"),
		LogLevel:        get("LOG_LEVEL", "info"),
		JWTSecret:       getenv("JWT_SECRET"),
		GeocoderURL:     get("GEOCODER_URL", "https://dapi.kakao.com/v2/local/search/address.json"),
		GeocoderAPIKey:  getenv("GEOCODER_API_KEY"),
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		KafkaBrokers:    splitList(getenv("KAFKA_BROKERS")),
		KafkaAuditTopic: get("KAFKA_AUDIT_TOPIC", "moderation-audit"),
		CORSOrigins:     splitList(get("CORS_ORIGINS", "*")),
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			get("DB_HOST", "localhost"),
			get("DB_PORT", "5432"),
			get("DB_USER", "postgres"),
			getenv("DB_PASSWORD"),
			get("DB_NAME", "tastemap"),
			get("DB_SSLMODE", "disable"),
		)
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB %q", v)
		}
		cfg.RedisDB = n
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool { return c.Env == "development" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
