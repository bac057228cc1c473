package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageFirestore = "firestore"
	StorageMemory    = "memory"
)

type Config struct {
	ServerPort         string
	Environment        string
	StorageDriver      string
	FirebaseProject    string
	ServiceAccountJSON string
	ServiceAccountPath string
	StorageBucket      string
	JWTSecret          string
	JWTExpiry          int64
	CookieSecure       bool
	BootstrapAdmin     string
	LoginRatePerMinute int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageFirestore)),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:          getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		CookieSecure:       getEnvAsBool("COOKIE_SECURE", false),
		BootstrapAdmin:     getEnv("BOOTSTRAP_ADMIN", ""),
		LoginRatePerMinute: int(getEnvAsInt64("LOGIN_RATE_PER_MINUTE", 10)),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageFirestore:
		if c.FirebaseProject == "" {
			return errMissing("FIREBASE_PROJECT_ID")
		}
	default:
		return &ConfigError{Key: "STORAGE_DRIVER", Reason: "must be firestore or memory"}
	}
	if c.Environment != "development" && c.JWTSecret == "your-secret-key" {
		return &ConfigError{Key: "JWT_SECRET", Reason: "default secret outside development"}
	}
	if c.LoginRatePerMinute <= 0 {
		return &ConfigError{Key: "LOGIN_RATE_PER_MINUTE", Reason: "must be positive"}
	}
	return nil
}

type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return "config " + e.Key + ": " + e.Reason
}

func errMissing(key string) error {
	return &ConfigError{Key: key, Reason: "is required"}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
