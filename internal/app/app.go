// Package app wires storage, services and handlers for the binaries under cmd/.
package app

import (
	"context"
	"fmt"

	"go-bom-graph/internal/handler"
	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/service"
	"go-bom-graph/internal/ws"
	"go-bom-graph/pkg/config"
	"go-bom-graph/pkg/database"
	"go-bom-graph/pkg/logger"
	"go-bom-graph/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Services struct {
	DB        *gorm.DB
	Store     repository.Store
	Registry  *prometheus.Registry
	Hub       *ws.Hub
	Parts     service.PartService
	Bom       service.BomService
	Tree      service.TreeService
	Dashboard service.DashboardService
}

// NewLogger builds the process logger from the app config.
func NewLogger(cfg config.AppConfig) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: cfg.Name,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		WarnStack:   cfg.WarnStack,
	})
}

// Build connects to the database, migrates when enabled and constructs every
// service. Counters are seeded from storage before Build returns.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	db, err := database.Connect(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		// Auto Migrate (production deployments may prefer a separate migration step)
		if err := db.WithContext(ctx).AutoMigrate(model.AllModels()...); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bomMetrics := metrics.NewBomMetrics(registry)

	store := repository.NewStore(db)
	hub := ws.NewHub(log)

	audit := service.NewAuditTrail()
	if err := audit.Load(ctx, store); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("loading audit sequence: %w", err)
	}

	var events service.EventPublisher
	if cfg.HTTP.EnableWebsocket {
		events = hub
	}

	parts, err := service.NewPartService(ctx, store, audit, events, bomMetrics, log)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("loading part sequences: %w", err)
	}

	return &Services{
		DB:        db,
		Store:     store,
		Registry:  registry,
		Hub:       hub,
		Parts:     parts,
		Bom:       service.NewBomService(store, audit, events, bomMetrics, log),
		Tree:      service.NewTreeService(store, bomMetrics),
		Dashboard: service.NewDashboardService(store),
	}, nil
}

// Handlers builds the HTTP handlers over s.
func (s *Services) Handlers(cfg *config.Config, log *logger.Logger) handler.Handlers {
	return handler.Handlers{
		Parts:     handler.NewPartHandler(s.Parts, log),
		Bom:       handler.NewBomHandler(s.Bom, s.Tree, log),
		Dashboard: handler.NewDashboardHandler(s.Dashboard, cfg.HTTP.ActivityMaxDays, log),
	}
}

func (s *Services) Close() error {
	return database.Close(s.DB)
}
