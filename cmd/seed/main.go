package main

import (
	"context"
	"fmt"
	"os"

	"go-bom-graph/internal/app"
	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/service"
	"go-bom-graph/pkg/config"
	"go-bom-graph/pkg/logger"

	"github.com/joho/godotenv"
)

type seedPart struct {
	key         string
	name        string
	description string
}

type seedLink struct {
	parent, child string
	quantity      int
}

var demoParts = []seedPart{
	{"bike", "Bicycle", "Complete city bicycle"},
	{"frame", "Frame Assembly", "Aluminium frame with fork"},
	{"wheel", "Wheel Assembly", "700c wheel"},
	{"rim", "Rim", "Double wall rim"},
	{"spoke", "Spoke", "Stainless spoke 2.0mm"},
	{"hub", "Hub", "Sealed bearing hub"},
	{"tire", "Tire", "700x32c tire"},
	{"bolt", "Bolt M5", "M5x12 hex bolt"},
}

var demoLinks = []seedLink{
	{"bike", "frame", 1},
	{"bike", "wheel", 2},
	{"frame", "bolt", 6},
	{"wheel", "rim", 1},
	{"wheel", "spoke", 32},
	{"wheel", "hub", 1},
	{"wheel", "tire", 1},
	{"hub", "bolt", 2},
}

func main() {
	ctx := context.Background()

	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "bom-seed"}).Error(ctx, "invalid configuration", err)
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

	// 3. Skip when data exists
	existing, err := services.Parts.SearchParts(ctx, repository.PartFilter{})
	if err != nil {
		log.Error(ctx, "checking existing parts", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		log.Info(ctx, fmt.Sprintf("database already holds %d parts, skipping seed", len(existing)))
		return
	}

	// 4. Load the demo assembly
	if err := seed(ctx, services.Parts, services.Bom); err != nil {
		log.Error(ctx, "seeding demo BOM", err)
		os.Exit(1)
	}
	log.Info(ctx, fmt.Sprintf("seeded %d parts and %d BOM links", len(demoParts), len(demoLinks)))
}

func seed(ctx context.Context, parts service.PartService, bom service.BomService) error {
	created := make(map[string]*model.Part, len(demoParts))
	for _, p := range demoParts {
		description := p.description
		part, err := parts.CreatePart(ctx, service.CreatePartInput{Name: p.name, Description: &description})
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.key, err)
		}
		created[p.key] = part
	}
	for _, l := range demoLinks {
		if _, err := bom.CreateLink(ctx, created[l.parent].ID, created[l.child].ID, l.quantity); err != nil {
			return fmt.Errorf("linking %s -> %s: %w", l.parent, l.child, err)
		}
	}
	return nil
}
