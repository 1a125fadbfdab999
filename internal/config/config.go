// File: internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Message store backends.
const (
	StoreGorm   = "gorm"
	StoreBadger = "badger"
)

type Config struct {
	Environment  string
	ServerPort   string
	JWTSecretKey string
	LogLevel     string

	// Storage
	DatabaseURL  string // postgres DSN; empty selects sqlite
	SQLitePath   string
	MessageStore string
	BadgerPath   string

	// Chat
	ChatHistoryLimit int
	ChatSendBuffer   int
	BannedWords      []string
	ModerationMode   string
	AllowedOrigins   []string

	SecureCookies  bool
	AuditRetention time.Duration
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	production := strings.ToLower(env) == "production"
	if !production {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		Environment:      env,
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:     getEnv("JWT_SECRET_KEY", ""),
		LogLevel:         getEnv("LOG_LEVEL", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "darkbin.db"),
		MessageStore:     strings.ToLower(getEnv("MESSAGE_STORE", StoreGorm)),
		BadgerPath:       getEnv("BADGER_PATH", "data/messages"),
		ChatHistoryLimit: getEnvAsInt("CHAT_HISTORY_LIMIT", 100),
		ChatSendBuffer:   getEnvAsInt("CHAT_SEND_BUFFER", 256),
		BannedWords:      getEnvAsList("CHAT_BANNED_WORDS"),
		ModerationMode:   getEnv("CHAT_MODERATION_MODE", "reject"),
		AllowedOrigins:   getEnvAsList("ALLOWED_ORIGINS"),
		SecureCookies:    getEnvAsBool("COOKIE_SECURE", production),
		AuditRetention:   time.Duration(getEnvAsInt("AUDIT_RETENTION_DAYS", 90)) * 24 * time.Hour,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

func (c *Config) validate() error {
	if c.MessageStore != StoreGorm && c.MessageStore != StoreBadger {
		return fmt.Errorf("MESSAGE_STORE must be %q or %q, got %q", StoreGorm, StoreBadger, c.MessageStore)
	}
	if c.ChatHistoryLimit <= 0 || c.ChatHistoryLimit > 1000 {
		return fmt.Errorf("CHAT_HISTORY_LIMIT must be between 1 and 1000")
	}
	if c.ChatSendBuffer <= 0 {
		return fmt.Errorf("CHAT_SEND_BUFFER must be positive")
	}

	// Validation for production environments
	if c.IsProduction() {
		missing := []string{}
		if c.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
		if len(c.JWTSecretKey) < 32 {
			return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters in production")
		}
	}
	if c.JWTSecretKey == "" {
		key, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate JWT secret: %w", err)
		}
		log.Println("Warning: JWT_SECRET_KEY is empty; using a random key, sessions will not survive a restart")
		c.JWTSecretKey = key
	}
	return nil
}

// randomSecret returns a per-process signing key.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}

// getEnvAsList splits a comma-separated env var, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
