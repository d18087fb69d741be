// config.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string
	Env     string
	BaseURL string

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlserver
	DatabaseURL       string // raw DSN, overrides the parts below
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string

	// Token auth
	JWTSecret      string
	JWTExpiryHours int

	// API key for the public random properties feed
	APIKey string

	// Media
	UploadDir          string
	MediaURLPrefix     string
	MediaSweepInterval time.Duration
	MaxUploadMB        int

	// Redis query cache, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables, reading ENV_FILE or
// ./.env first when present. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "5000"),
		Env:                getEnv("APP_ENV", "development"),
		BaseURL:            strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:5000"), "/"),
		DBType:             strings.ToLower(getEnv("DB_TYPE", "mysql")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBDatabase:         getEnv("DB_DATABASE", ""),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:  getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		DBLogLevel:         getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpiryHours:     getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		APIKey:             getEnv("API_KEY", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		MediaURLPrefix:     "/" + strings.Trim(getEnv("MEDIA_URL_PREFIX", "/images"), "/"),
		MediaSweepInterval: getEnvAsDuration("MEDIA_SWEEP_INTERVAL", 15*time.Minute),
		MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 10),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		CacheTTL:           time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" && cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE or DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBConnectionLimit < 1 {
		cfg.DBConnectionLimit = 1
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MaxUploadBytes is the per-file upload limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func loadEnvFile() error {
	if file := os.Getenv("ENV_FILE"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load()
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("10m") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
