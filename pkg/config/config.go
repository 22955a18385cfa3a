package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	DBDriver                string
	PostgresConnStr         string
	SQLitePath              string
	JWTSecret               string
	JWTTTL                  time.Duration
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	FeedCacheTTL            time.Duration
	FirebaseCredentialsPath string
}

// Load reads the configuration from the environment, merging a .env file first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		DBDriver:                getEnv("DB_DRIVER", "postgres"),
		PostgresConnStr:         os.Getenv("POSTGRES_CONN_STR"),
		SQLitePath:              getEnv("SQLITE_PATH", "social.db"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.FeedCacheTTL, err = getDuration("FEED_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresConnStr == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		cfg.JWTSecret = "supersecretjwtkey"
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
