package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Couch     CouchConfig
	JWT       JWTConfig
	CORS      CORSConfig
	WebSocket WebSocketConfig
	DevUser   DevUserConfig
}

type ServerConfig struct {
	Port      string
	Host      string
	Env       string
	CommitSHA string
}

// StoreConfig selects the storage backend. "memory" is the default mock mode
// used for local development and e2e tests; "couch" persists to CouchDB.
type StoreConfig struct {
	Backend string
}

type CouchConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type WebSocketConfig struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

// DevUserConfig is the account seeded into the memory backend so the studio
// frontend can log in against a fresh mock server.
type DevUserConfig struct {
	Email    string
	Password string
	Role     string
}

func Load() (*Config, error) {
	godotenv.Load()

	jwtExp, err := time.ParseDuration(getEnv("JWT_EXPIRATION", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "3000"),
			Host:      getEnv("HOST", "0.0.0.0"),
			Env:       getEnv("ENV", "development"),
			CommitSHA: getEnv("COMMIT_SHA", ""),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "memory"),
		},
		Couch: CouchConfig{
			Host:     getEnv("COUCH_HOST", "localhost"),
			Port:     getEnv("COUCH_PORT", "5984"),
			User:     getEnv("COUCH_USER", "admin"),
			Password: getEnv("COUCH_PASSWORD", "password"),
			Name:     getEnv("COUCH_DB", "studio"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Expiration: jwtExp,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		WebSocket: WebSocketConfig{
			WriteWait:  10 * time.Second,
			PongWait:   60 * time.Second,
			PingPeriod: 54 * time.Second,
		},
		DevUser: DevUserConfig{
			Email:    getEnv("DEV_USER_EMAIL", "dev@auren.local"),
			Password: getEnv("DEV_USER_PASSWORD", "dev-password"),
			Role:     getEnv("DEV_USER_ROLE", "OWNER"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
