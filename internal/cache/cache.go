// cache.go
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

// Package cache keeps rendered public listing responses in Redis. Every
// property mutation bumps a generation number that is part of each key, so
// stale entries are never read again and simply expire.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "ddproperty:cache:"
	generationKey = keyPrefix + "generation"
)

// Cache stores JSON encoded values.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate makes every entry written so far unreachable.
	Invalidate(ctx context.Context) error
	// Key builds a key for a named query and its parameters.
	Key(ctx context.Context, name string, params map[string]string) string
}

// Redis is a Cache backed by a redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis wraps client; entries live for ttl.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Dial connects to addr.
func Dial(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (c *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (c *Redis) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *Redis) Key(ctx context.Context, name string, params map[string]string) string {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && err != redis.Nil {
		c.logger.Debug("cache generation unavailable", zap.Error(err))
	}
	return keyPrefix + name + ":" + strconv.FormatInt(gen, 10) + ":" + hashParams(params)
}

// Ping checks the connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Redis) Close() error {
	return c.client.Close()
}

func hashParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(params[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	return hex.EncodeToString(hash[:])
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}) error         { return nil }
func (Noop) Invalidate(context.Context) error                       { return nil }
func (Noop) Key(context.Context, string, map[string]string) string  { return "" }
