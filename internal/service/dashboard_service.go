package service

import (
	"context"
	"time"

	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/pkg/apperror"
)

// ActivityData is one day of audit activity for charts.
type ActivityData struct {
	Date        string `json:"date"`
	PartChanges int    `json:"partChanges"`
	LinkChanges int    `json:"linkChanges"`
}

type DashboardService interface {
	GetGraphStats(ctx context.Context) (*repository.GraphStats, error)
	GetActivity(ctx context.Context, days int) ([]ActivityData, error)
}

type dashboardService struct {
	store repository.Store
	now   func() time.Time
}

func NewDashboardService(store repository.Store) DashboardService {
	return &dashboardService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *dashboardService) GetGraphStats(ctx context.Context) (*repository.GraphStats, error) {
	stats, err := s.store.Stats().GraphStats(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "loading graph stats")
	}
	return stats, nil
}

// GetActivity buckets audit entries by UTC day for the last days days,
// including today. Days without activity are present with zero counts.
func (s *dashboardService) GetActivity(ctx context.Context, days int) ([]ActivityData, error) {
	if days <= 0 {
		return nil, apperror.Validation("Days must be a positive integer.")
	}

	today := s.now().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	entries, err := s.store.Audits().ListSince(ctx, start)
	if err != nil {
		return nil, apperror.Internal(err, "loading audit activity")
	}

	results := make([]ActivityData, days)
	index := make(map[string]int, days)
	for i := range results {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		results[i].Date = date
		index[date] = i
	}

	for _, entry := range entries {
		i, ok := index[entry.Timestamp.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		switch entry.Action {
		case model.AuditPartCreated, model.AuditPartUpdated:
			results[i].PartChanges++
		case model.AuditLinkCreated, model.AuditLinkUpdated, model.AuditLinkRemoved:
			// each link mutation writes a parent and a child entry; count it once
			if parentID, _ := entry.Metadata["parentId"].(string); parentID == entry.PartID {
				results[i].LinkChanges++
			}
		}
	}
	return results, nil
}
