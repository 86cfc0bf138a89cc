package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth (single admin user)
	AdminUsername    string
	AdminPassword    string // plaintext in env, hashed at startup
	AdminDisplayName string
	AdminUserID      string // uuid; derived from username when unset
	JWTSecret        string
}

func Load() *Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8090"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "ordertrail_db"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		AdminDisplayName: getEnv("ADMIN_DISPLAY_NAME", "Admin"),
		AdminUserID:      getEnv("ADMIN_USER_ID", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
