package repository

import (
	"context"

	"go-bom-graph/internal/model"

	"gorm.io/gorm"
)

// GraphStats summarises the shape of the BOM graph.
type GraphStats struct {
	TotalParts    int64 `json:"totalParts"`
	TotalLinks    int64 `json:"totalLinks"`
	Assemblies    int64 `json:"assemblies"`
	TopLevelParts int64 `json:"topLevelParts"`
	LeafParts     int64 `json:"leafParts"`
}

type StatsRepository interface {
	GraphStats(ctx context.Context) (*GraphStats, error)
}

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db}
}

func (r *statsRepo) GraphStats(ctx context.Context) (*GraphStats, error) {
	var stats GraphStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Part{}).Count(&stats.TotalParts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.BomLink{}).Count(&stats.TotalLinks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.BomLink{}).Distinct("parent_id").Count(&stats.Assemblies).Error; err != nil {
		return nil, err
	}

	var withParents int64
	if err := db.Model(&model.BomLink{}).Distinct("child_id").Count(&withParents).Error; err != nil {
		return nil, err
	}
	stats.TopLevelParts = stats.TotalParts - withParents
	stats.LeafParts = stats.TotalParts - stats.Assemblies

	return &stats, nil
}
