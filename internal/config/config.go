package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// RTConfig holds settings for the provider camera API client.
type RTConfig struct {
	APIKey        string
	BaseURL       string
	PerPage       int
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// CacheConfig holds per-concern TTLs for upstream response caches.
type CacheConfig struct {
	CamerasTTL   time.Duration
	StatsTTL     time.Duration
	ArchivesTTL  time.Duration
	FragmentsTTL time.Duration
	HealthTTL    time.Duration
}

// ReportConfig holds settings for archive integrity report generation.
type ReportConfig struct {
	PeriodDays int
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port     string
	LogLevel string
	RT       RTConfig
	Cache    CacheConfig
	Report   ReportConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
}

// ErrAPIKeyMissing is returned when API_KEY is not set. The portal cannot
// authenticate against the provider camera API without it.
var ErrAPIKeyMissing = errors.New("API_KEY environment variable is required")

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:     getEnv("PORT", "5000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		RT: RTConfig{
			APIKey:        os.Getenv("API_KEY"),
			BaseURL:       getEnv("RT_BASE_URL", "https://lk-b2b.camera.rt.ru/api"),
			PerPage:       getEnvInt("RT_PER_PAGE", 1000),
			Timeout:       getEnvSeconds("RT_TIMEOUT_SEC", 30),
			HealthTimeout: getEnvSeconds("RT_HEALTH_TIMEOUT_SEC", 10),
		},
		Cache: CacheConfig{
			CamerasTTL:   getEnvSeconds("CACHE_TTL_CAMERAS", 60),
			StatsTTL:     getEnvSeconds("CACHE_TTL_STATS", 120),
			ArchivesTTL:  getEnvSeconds("CACHE_TTL_ARCHIVES", 300),
			FragmentsTTL: getEnvSeconds("CACHE_TTL_FRAGMENTS", 600),
			HealthTTL:    getEnvSeconds("CACHE_TTL_HEALTH", 30),
		},
		Report: ReportConfig{
			PeriodDays: getEnvInt("REPORT_PERIOD_DAYS", 7),
			Workers:    getEnvInt("REPORT_WORKERS", 8),
			MaxRetries: getEnvInt("REPORT_MAX_RETRIES", 3),
			RetryDelay: getEnvSeconds("REPORT_RETRY_DELAY_SEC", 2),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "reports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}

	if cfg.RT.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvSeconds(key string, def int) time.Duration {
	return time.Duration(getEnvInt(key, def)) * time.Second
}
