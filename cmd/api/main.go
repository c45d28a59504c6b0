package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"dxfhatch/docs"
	"dxfhatch/internal/config"
	handlers "dxfhatch/internal/http/handler"
	"dxfhatch/internal/http/middleware"
	"dxfhatch/internal/logging"
	"dxfhatch/internal/otel"
	"dxfhatch/internal/service"
)

// @title DXF Hatch API
// @version 1.0
// @description Generates circles filled with an associative line hatch and hatches circles in uploaded DXF drawings.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	loc, err := cfg.Log.Location()
	if err != nil {
		log.Fatalf("failed to load time zone: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, loc)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(cfg, logger, reg, service.NewHatchService(logger))
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}

	addr := ":" + cfg.Server.Port
	go func() {
		logger.Info("server_started", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("tracer shutdown failed", zap.Error(err))
	}
}

// newApp wires middleware and routes around svc.
func newApp(cfg *config.AppConfig, logger *zap.Logger, reg *prometheus.Registry, svc service.HatchService) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Server.BodyLimit(),
	})

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowOrigins,
		AllowMethods:  cfg.CORS.AllowMethods,
		AllowHeaders:  cfg.CORS.AllowHeaders,
		ExposeHeaders: strings.Join([]string{fiber.HeaderContentDisposition, middleware.RequestIDHeader}, ","),
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == middleware.MetricsPath
	})))
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(
		otelhttp.NewHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), "metrics"),
	))

	handlers.RegisterRoutes(app, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		host := c.Get("Host")
		if host == "" {
			host = cfg.Server.AppHost
		}
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	return app, nil
}
