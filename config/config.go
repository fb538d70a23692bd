package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/storage"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	DatabaseURL        string
	JWTSecretKey       string
	ServerPort         int
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	PointsScheme       models.PointsScheme
	R2                 storage.CloudflareR2UploaderConfig
	SnapshotInterval   time.Duration
}

// Load reads the configuration from environment variables.
// A .env file is loaded first when present.
func Load() (*Config, error) {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	scheme := models.DefaultPointsScheme
	if scheme.Win, err = intEnv("STANDINGS_POINTS_WIN", scheme.Win); err != nil {
		return nil, err
	}
	if scheme.Draw, err = intEnv("STANDINGS_POINTS_DRAW", scheme.Draw); err != nil {
		return nil, err
	}
	if scheme.Loss, err = intEnv("STANDINGS_POINTS_LOSS", scheme.Loss); err != nil {
		return nil, err
	}

	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if err := r2.Validate(); err != nil {
		return nil, err
	}

	var interval time.Duration
	if raw := os.Getenv("SNAPSHOT_INTERVAL"); raw != "" && raw != "0" {
		interval, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL environment variable: %w", err)
		}
		if interval < 0 {
			return nil, fmt.Errorf("SNAPSHOT_INTERVAL must not be negative, got %s", interval)
		}
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "*")),
		PointsScheme:       scheme,
		R2:                 r2,
		SnapshotInterval:   interval,
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
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
