// main.go
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/cache"
	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/ddproperty/ddproperty-api/internal/database"
	"github.com/ddproperty/ddproperty-api/internal/logging"
	"github.com/ddproperty/ddproperty-api/internal/server"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"go.uber.org/zap"
)

// @title DD Property API
// @version 1.0.0
// @description Property listing service: listings, media, inquiries and backoffice
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email dev@ddproperty.co.th

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, server.ServiceName)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	var (
		queryCache cache.Cache
		health     services.Pinger
	)
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL, logger)
		defer rc.Close()
		health = rc

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			// serve uncached rather than refuse to start; readiness keeps reporting it
			logger.Warn("redis unavailable, query cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			queryCache = rc
		}
	}

	srv, err := server.New(server.Deps{Config: cfg, DB: db, Logger: logger, Cache: queryCache, Health: health})
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go srv.Sweeper.Run(ctx, cfg.MediaSweepInterval)

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		logger.Info("gracefully shutting down")
		stop()
		_ = srv.App.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := server.Addr(cfg)
	logger.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := srv.App.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("server stopped")
}
