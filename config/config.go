package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Catalog backend
	Source  string // "file", "mongo", "firestore"
	Fixture string // JSON fixture path for the file source

	// Feed
	PageSize    int
	CountryCode string
	PublicURL   string

	// Rate limiting
	RatePerSecond float64
	RateBurst     int
	MaxConcurrent int

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Firestore REST
	FirestoreProject string
	FirestoreAPIKey  string
	FirestoreBaseURL string

	// Redis cache, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Image storage, disabled when MinioEndpoint is empty
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// HTTP server
	HTTPPort string
	APIKey   string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source:           "file",
		Fixture:          "catalog.json",
		PageSize:         10,
		CountryCode:      "234",
		RatePerSecond:    5.0,
		RateBurst:        5,
		MaxConcurrent:    4,
		MongoDatabase:    "campusfair",
		FirestoreBaseURL: "https://firestore.googleapis.com",
		CacheTTL:         5 * time.Minute,
		MinioBucket:      "campusfair",
		HTTPPort:         "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	setString(&c.Source, "CAMPUSFAIR_SOURCE")
	setString(&c.Fixture, "CAMPUSFAIR_FIXTURE")
	setInt(&c.PageSize, "CAMPUSFAIR_PAGE_SIZE")
	setString(&c.CountryCode, "CAMPUSFAIR_COUNTRY_CODE")
	setString(&c.PublicURL, "CAMPUSFAIR_PUBLIC_URL")
	if v := os.Getenv("CAMPUSFAIR_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	setInt(&c.RateBurst, "CAMPUSFAIR_RATE_BURST")
	setInt(&c.MaxConcurrent, "CAMPUSFAIR_MAX_CONCURRENT")
	if v := os.Getenv("CAMPUSFAIR_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = d
		}
	}

	setString(&c.MongoURI, "MONGO_URI")
	setString(&c.MongoDatabase, "MONGO_DATABASE")
	setString(&c.FirestoreProject, "FIRESTORE_PROJECT")
	setString(&c.FirestoreAPIKey, "FIRESTORE_API_KEY")
	setString(&c.FirestoreBaseURL, "FIRESTORE_BASE_URL")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setString(&c.MinioEndpoint, "MINIO_ENDPOINT")
	setString(&c.MinioAccessKey, "MINIO_ACCESS_KEY")
	setString(&c.MinioSecretKey, "MINIO_SECRET_KEY")
	setString(&c.MinioBucket, "MINIO_BUCKET")
	setString(&c.MinioRegion, "MINIO_REGION")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.MinioUseSSL = b
		}
	}

	setString(&c.HTTPPort, "PORT")
	setString(&c.APIKey, "CAMPUSFAIR_API_KEY")
}

// Validate reports settings the selected source cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source {
	case "file":
		if c.Fixture == "" {
			errs = append(errs, errors.New("CAMPUSFAIR_FIXTURE is required for the file source"))
		}
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo source"))
		}
	case "firestore":
		if c.FirestoreProject == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT is required for the firestore source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q (want file, mongo or firestore)", c.Source))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page size must be at least 1, got %d", c.PageSize))
	}
	if c.RatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("rate per second must be positive, got %v", c.RatePerSecond))
	}
	if c.MinioEndpoint != "" && c.MinioBucket == "" {
		errs = append(errs, errors.New("MINIO_BUCKET is required when MINIO_ENDPOINT is set"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
