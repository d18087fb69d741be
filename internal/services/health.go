package services

import (
	"context"
	"fmt"

	"github.com/ddproperty/ddproperty-api/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Cache        string            `json:"cache"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every dependency answered.
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// Pinger is a cache client that can report whether its server answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck pings the database and, when a client is given, the cache server.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, cache Pinger, logger *zap.Logger) HealthCheckResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	fail := func(msg string) {
		result.Status = "unhealthy"
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		fail(fmt.Sprintf("Database connection error: %v", err))
		logger.Warn("health check failed: database connection", zap.Error(err))
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		fail(fmt.Sprintf("Database ping failed: %v", err))
		logger.Warn("health check failed: database ping", zap.Error(err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		if cfg.DBDatabase != "" {
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	if cache == nil {
		result.Cache = "disabled"
	} else if err := cache.Ping(ctx); err != nil {
		result.Cache = "unreachable"
		result.Details["cache_error"] = err.Error()
		fail(fmt.Sprintf("Cache ping failed: %v", err))
		logger.Warn("health check failed: cache ping", zap.Error(err))
	} else {
		result.Cache = "ok"
	}

	return result
}
