// Package bootstrap wires configuration, infrastructure, services and the
// HTTP surface into a runnable application.
package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	httpin "mailmaestro/adapter/in/http"
	"mailmaestro/config"
	"mailmaestro/infra/middleware"
	"mailmaestro/pkg/logger"
)

// NewAPI builds the fiber application with all routes registered. The
// returned cleanup closes infrastructure connections.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "mailmaestro-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             10 * 1024 * 1024,
	})

	// Middleware order matters: recover first, then request identity, then
	// logging over the identified request.
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" && cfg.IsDevelopment() {
		allowOrigins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	// Public routes
	httpin.NewHealthHandler(deps.DB, deps.Redis).Register(app)

	// Authenticated API
	api := app.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	httpin.NewAIHandler(deps.AnalysisService).Register(api)
	httpin.NewEmailHandler(deps.MailService).Register(api)
	httpin.NewTaskHandler(deps.TaskService).Register(api)
	httpin.NewCalendarHandler(deps.EventService).Register(api)

	return app, cleanup, nil
}
