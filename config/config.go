// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	AutoMigrate       bool

	RedisURL      string
	RedisPassword string

	JWTSecret string
	JWTExpiry time.Duration

	AllowedOrigins []string

	LogLevel string
	LogFile  string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	UseHTTPS    bool
	TLSCertFile string
	TLSKeyFile  string
}

// Load reads an optional .env file and then the process environment.
// A missing env file is not an error.
func Load(envFile string) *Config {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	return &Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:       getEnv("DATABASE_URL", "host=localhost port=5432 user=postgres dbname=gamecatalog password=postgres sslmode=disable"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:       getBool("DB_AUTO_MIGRATE", true),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiry:         getDuration("JWT_EXPIRY", time.Hour),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
		LoginRateLimit:    getInt("LOGIN_RATE_LIMIT", 20),
		LoginRateWindow:   getDuration("LOGIN_RATE_WINDOW", time.Minute),
		UseHTTPS:          getBool("USE_HTTPS", false),
		TLSCertFile:       os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:        os.Getenv("TLS_KEY_FILE"),
	}
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
