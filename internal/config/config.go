package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
	StorageMinio      = "minio"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	// DataFile is used when DatabaseURL is empty.
	DataFile    string
	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	StorageDriver    string
	UploadsDir       string
	UploadsURLPrefix string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	VolcAPIKey           string
	VolcSeedreamEndpoint string
	VolcAPIURL           string
	GenerationTimeout    time.Duration
	DownloadTimeout      time.Duration

	CommitMaxItems    int
	RateLimitGenerate time.Duration

	SweepSchedule string
	SweepGrace    time.Duration

	// AdminPassword seeds the admin account at startup when set.
	AdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		DataFile:    getEnv("DATA_FILE", "db.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageLocal)),
		UploadsDir:       getEnv("UPLOADS_DIR", "public/uploads"),
		UploadsURLPrefix: getEnv("UPLOADS_URL_PREFIX", "/uploads"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "nexus-gallery"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "nexus-gallery"),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		VolcAPIKey:           os.Getenv("VOLC_API_KEY"),
		VolcSeedreamEndpoint: os.Getenv("VOLC_SEEDREAM_ENDPOINT"),
		VolcAPIURL:           os.Getenv("VOLC_API_URL"),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 6h"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	cfg.MinioUseSSL, err = strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MINIO_USE_SSL: %w", err)
	}
	cfg.CommitMaxItems, err = strconv.Atoi(getEnv("COMMIT_MAX_ITEMS", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMIT_MAX_ITEMS: %w", err)
	}

	// Parsing durations
	cfg.GenerationTimeout, err = parseDuration(getEnv("GENERATION_TIMEOUT", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
	}
	cfg.DownloadTimeout, err = parseDuration(getEnv("DOWNLOAD_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}
	cfg.RateLimitGenerate, err = parseDuration(getEnv("RATE_LIMIT_GENERATE", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GENERATE: %w", err)
	}
	cfg.SweepGrace, err = parseDuration(getEnv("SWEEP_GRACE", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_GRACE: %w", err)
	}

	switch cfg.StorageDriver {
	case StorageLocal, StorageCloudinary, StorageMinio:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
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
