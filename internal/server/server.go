// server.go
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

// Package server assembles the HTTP application: services, middleware and
// routes.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/ddproperty/ddproperty-api/data"
	"github.com/ddproperty/ddproperty-api/internal/cache"
	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/ddproperty/ddproperty-api/internal/handlers"
	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/middleware"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/ddproperty/ddproperty-api/docs/api" // Swagger docs
)

// ServiceName labels metrics and logs.
const ServiceName = "ddproperty"

// the collectors register on the default prometheus registry, once per process
var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

func metricsMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(ServiceName)
	})
	return prom
}

// Deps are the resources the server is built on. Cache may be nil.
// Health is the client the readiness probe pings; it defaults to Cache when
// that can be pinged, so a cache that was down at startup can still be
// reported.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	Cache  cache.Cache
	Health services.Pinger
}

// Server is the assembled application.
type Server struct {
	App     *fiber.App
	Sweeper *media.Sweeper
	Tokens  *services.TokenIssuer
}

// New builds the application and registers every route.
func New(deps Deps) (*Server, error) {
	cfg, logger := deps.Config, deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}

	catalog, err := services.LoadCatalog(data.PropertyTypes)
	if err != nil {
		return nil, err
	}

	relocator := media.NewRelocator(cfg.UploadDir, cfg.MediaURLPrefix, logger)
	store := media.NewStore(relocator, cfg.MaxUploadBytes())
	tokens := services.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	propertyRepo := repository.NewPropertyRepository(deps.DB, taxonomy.NewNormalizer(logger), relocator, logger)
	userRepo := repository.NewUserRepository(deps.DB)
	propertySvc := services.NewPropertyService(propertyRepo, store, c, catalog, cfg.BaseURL, logger)

	propertyH := &handlers.PropertyHandler{Properties: propertySvc}
	messageH := &handlers.MessageHandler{
		Messages: services.NewMessageService(repository.NewMessageRepository(deps.DB), propertyRepo, logger),
	}
	authH := &handlers.AuthHandler{Auth: services.NewAuthService(userRepo, tokens, logger), SecureCookie: cfg.IsProduction()}
	userH := &handlers.UserHandler{Users: services.NewUserService(userRepo, logger)}
	zoneH := &handlers.ZoneHandler{Zones: services.NewZoneService(repository.NewZoneRepository(deps.DB)), PropertySvc: propertySvc}
	dashboardH := &handlers.DashboardHandler{Dashboard: services.NewDashboardService(repository.NewDashboardRepository(deps.DB))}
	healthH := &handlers.HealthHandler{Config: cfg, DB: deps.DB, Cache: deps.Health, Logger: logger}
	if healthH.Cache == nil {
		if p, ok := c.(services.Pinger); ok {
			healthH.Cache = p
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(cfg.IsProduction(), logger),
		BodyLimit:             bodyLimit(cfg),
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := metricsMiddleware()
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/health", healthH.Live)
	app.Get("/health/ready", healthH.Ready)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded media
	app.Static(cfg.MediaURLPrefix, cfg.UploadDir)

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())
	auth := middleware.Authenticate(tokens)

	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)

	props := api.Group("/properties")
	props.Get("/", propertyH.List)
	props.Get("/random", middleware.APIKey(cfg.APIKey), propertyH.Random)
	props.Get("/types", propertyH.Types)
	props.Get("/price-types", propertyH.PriceTypes)
	props.Get("/backoffice/my-properties", auth, propertyH.MyProperties)
	props.Get("/backoffice/export", auth, propertyH.Export)
	props.Delete("/images/:id<int>", auth, propertyH.DeleteImage)
	props.Delete("/features/:id<int>", auth, propertyH.DeleteFeature)
	props.Get("/:id<int>", propertyH.Get)
	props.Post("/", auth, propertyH.Create)
	props.Put("/:id<int>", auth, propertyH.Update)
	props.Put("/:id<int>/taxonomy", auth, propertyH.ReplaceTaxonomy)
	props.Delete("/:id<int>", auth, propertyH.Delete)
	props.Post("/:id<int>/images", auth, propertyH.AddImage)
	props.Post("/:id<int>/features", auth, propertyH.AddFeature)

	api.Post("/uploads", auth, propertyH.Upload)
	api.Get("/search", propertyH.Search)

	api.Post("/messages", messageH.Create)
	api.Get("/messages", auth, messageH.List)
	api.Get("/messages/user", auth, messageH.ListForUser)
	api.Get("/messages/property/:id<int>", auth, messageH.ByProperty)
	api.Patch("/messages/:id<int>/status", auth, messageH.UpdateStatus)

	api.Get("/dashboard/stats", auth, dashboardH.Stats)

	api.Get("/zones", zoneH.List)
	api.Get("/zones/cities", zoneH.Cities)
	api.Get("/zones/:id<int>", zoneH.Get)
	api.Get("/zones/:id<int>/properties", zoneH.Properties)

	api.Get("/icons", zoneH.Icons)
	api.Get("/icons/prefix/:prefix", zoneH.IconsByPrefix)
	api.Get("/icons/:id<int>", zoneH.Icon)

	users := api.Group("/users", auth)
	users.Get("/me", userH.Me)
	users.Put("/me/password", userH.ChangePassword)
	admin := middleware.RequireRole(models.RoleAdmin)
	users.Get("/", admin, userH.List)
	users.Post("/", admin, userH.Create)
	users.Get("/:id<int>", admin, userH.Get)
	users.Put("/:id<int>", admin, userH.Update)
	users.Delete("/:id<int>", admin, userH.Delete)

	// 404 handler
	app.Use(handlers.NotFound)

	logger.Info("routes registered",
		zap.Int("handlers", int(app.HandlersCount())),
		zap.String("media_prefix", cfg.MediaURLPrefix))

	return &Server{
		App:     app,
		Sweeper: media.NewSweeper(deps.DB, relocator, c, logger),
		Tokens:  tokens,
	}, nil
}

// bodyLimit admits a property submission carrying several files.
func bodyLimit(cfg *config.Config) int {
	const files = 20
	limit := cfg.MaxUploadBytes() * files
	if limit <= 0 {
		limit = 4 << 20
	}
	return int(limit)
}

// Addr is the listen address for cfg.
func Addr(cfg *config.Config) string {
	return fmt.Sprintf(":%s", cfg.Port)
}
