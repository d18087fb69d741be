// connection.go
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

package database

import (
	"fmt"
	"net"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(LogLevel(cfg.DBLogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(max(cfg.DBConnectionLimit/2, 1))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("connected to database", zap.String("type", cfg.DBType), zap.String("database", cfg.DBDatabase))

	return db, nil
}

// Dialector selects the GORM dialector for cfg.DBType.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			mc := mysqldriver.NewConfig()
			mc.User = cfg.DBUser
			mc.Passwd = cfg.DBPassword
			mc.Net = "tcp"
			mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
			mc.DBName = cfg.DBDatabase
			mc.ParseTime = true
			mc.Loc = time.UTC
			mc.Params = map[string]string{"charset": "utf8mb4"}
			dsn = mc.FormatDSN()
		}
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBHost,
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBDatabase,
				cfg.DBPort,
			)
		}
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = cfg.DBDatabase + "?_pragma=foreign_keys(1)"
		}
		return sqlite.Open(dsn), nil

	case "sqlserver", "mssql":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBHost,
				cfg.DBPort,
				cfg.DBDatabase,
			)
		}
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// LogLevel maps DB_LOG_LEVEL to the GORM logger level.
func LogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Zone{},
		&models.Icon{},
		&models.Property{},
		&models.Listing{},
		&models.Image{},
		&models.FloorPlan{},
		&models.UnitPlan{},
		&models.Feature{},
		&models.Amenity{},
		&models.Facility{},
		&models.View{},
		&models.Highlight{},
		&models.Label{},
		&models.NearbyPlace{},
		&models.Message{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
