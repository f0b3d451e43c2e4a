package config

import (
	"os"
	"strconv"
	"time"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageLevelDB  = "leveldb"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	StorageBackend string // memory | postgres | leveldb
	DatabaseURL    string
	TablePrefix    string
	LevelDBPath    string
	// Seed data (JSON or YAML), loaded into the memory backend on startup
	SeedFoldersPath string
	SeedFilesPath   string
	// Upload pipeline
	UploadStepInterval     time.Duration
	UploadSessionRetention time.Duration
	// Logging
	LogDir      string // empty = stdout only
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		Environment:            env,
		CORSOrigins:            getEnv("CORS_ORIGINS", "http://localhost:5173"),
		StorageBackend:         getEnv("STORAGE_BACKEND", StorageMemory),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		TablePrefix:            getTablePrefix(env),
		LevelDBPath:            getEnv("LEVELDB_PATH", "./data"),
		SeedFoldersPath:        getEnv("SEED_FOLDERS", ""),
		SeedFilesPath:          getEnv("SEED_FILES", ""),
		UploadStepInterval:     getDuration("UPLOAD_STEP_INTERVAL", DefaultUploadStepInterval),
		UploadSessionRetention: getDuration("UPLOAD_SESSION_RETENTION", DefaultUploadSessionRetention),
		LogDir:                 getEnv("LOG_DIR", ""),
		LogMaxFiles:            getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration accepts Go duration strings ("250ms", "3s")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
