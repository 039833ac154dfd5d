package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-bom-graph/internal/app"
	"go-bom-graph/internal/handler"
	"go-bom-graph/internal/middleware"
	"go-bom-graph/pkg/config"
	"go-bom-graph/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "bom-graph"}).Error(ctx, "invalid configuration", err)
		os.Exit(1)
	}
	log := app.NewLogger(cfg.App)
	if envErr != nil {
		log.Warn(ctx, ".env file not found, relying on system env")
	}

	// 2. Setup Database and services
	services, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", err)
		os.Exit(1)
	}
	defer services.Close()

	// 3. Setup WebSocket Hub
	go services.Hub.Run(ctx)

	// 4. Setup Fiber
	server := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(middleware.RequestContext(log))
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:request_id} ${status} ${method} ${path} ${latency}\n",
		Output: log.Writer(),
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: strings.TrimSpace(cfg.HTTP.CORSOrigins),
	}))

	// 5. Routes
	server.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := services.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.Error(c.UserContext(), "health check failed", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(server, services.Handlers(cfg, log))

	// WebSocket Route
	if cfg.HTTP.EnableWebsocket {
		server.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		server.Get("/ws", websocket.New(func(c *websocket.Conn) {
			select {
			case services.Hub.Register <- c:
			case <-ctx.Done():
				return
			}
			defer func() {
				select {
				case services.Hub.Unregister <- c:
				case <-ctx.Done():
				}
			}()

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}

	// 6. Graceful Shutdown
	go func() {
		if err := server.Listen(":" + cfg.App.Port); err != nil {
			log.Error(ctx, "server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info(context.Background(), "shutting down server")
	if err := server.ShutdownWithTimeout(cfg.HTTP.ShutdownTimeout); err != nil {
		log.Error(context.Background(), "server forced to shutdown", err)
	}
	log.Info(context.Background(), "server exited")
}
