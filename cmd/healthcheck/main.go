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
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/cache"
	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/ddproperty/ddproperty-api/internal/database"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

func main() {
	var probeURL string
	flag.StringVar(&probeURL, "url", "", "probe a running server's /health/ready instead of the database (e.g. http://localhost:5000)")
	flag.Parse()

	if probeURL != "" {
		os.Exit(probe(probeURL))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var cacheClient services.Pinger
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL, nil)
		defer rc.Close()
		cacheClient = rc
	}
	result := services.HealthCheck(ctx, cfg, db, cacheClient, nil)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}
	fmt.Println(string(output))

	if !result.Healthy() {
		os.Exit(1)
	}
}

// probe asks a running server for its readiness and returns the exit code.
func probe(baseURL string) int {
	var result services.HealthCheckResult
	resp, err := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json").
		R().
		SetResult(&result).
		SetError(&result).
		Get("/health/ready")
	if err != nil {
		fmt.Fprintf(os.Stderr, "health probe failed: %v\n", err)
		return 1
	}

	fmt.Println(string(resp.Body()))
	if resp.IsError() || !result.Healthy() {
		return 1
	}
	return 0
}
