package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	MigrationsDir string
	CORSOrigin    string
	// Object storage (version artifacts)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	SweepSchedule    string
	// Search - empty MeiliURL disables Meilisearch, pg FTS still works
	MeiliURL       string
	MeiliMasterKey string
	// Redis - empty URL falls back to PostgreSQL refresh sessions
	RedisURL string
}

// Load reads configuration from the environment. The database URL and
// the object-store endpoint and credentials have no defaults: a missing
// value is a startup error, not something to limp along without.
func Load() (Config, error) {
	cfg := Config{
		Addr:             getenv("API_ADDR", ":8686"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getenv("DOCUFLOW_JWT_SECRET", "docuflow-dev-secret"),
		AccessTTL:        time.Duration(getenvInt("DOCUFLOW_ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:       time.Duration(getenvInt("DOCUFLOW_REFRESH_TTL_SECONDS", 2592000)) * time.Second,
		MigrationsDir:    getenv("DOCUFLOW_MIGRATIONS_DIR", "./db/migrations"),
		CORSOrigin:       getenv("DOCUFLOW_CORS_ORIGIN", "*"),
		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:    getenv("STORAGE_BUCKET", "docuflow-versions"),
		StorageUseSSL:    getenvBool("STORAGE_USE_SSL", false),
		SweepSchedule:    getenv("DOCUFLOW_SWEEP_SCHEDULE", "@hourly"),
		MeiliURL:         getenv("MEILI_URL", ""),
		MeiliMasterKey:   getenv("MEILI_MASTER_KEY", ""),
		RedisURL:         getenv("REDIS_URL", ""),
	}

	var missing []string
	for _, required := range []struct {
		name, value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"STORAGE_ENDPOINT", cfg.StorageEndpoint},
		{"STORAGE_ACCESS_KEY", cfg.StorageAccessKey},
		{"STORAGE_SECRET_KEY", cfg.StorageSecretKey},
	} {
		if strings.TrimSpace(required.value) == "" {
			missing = append(missing, required.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
