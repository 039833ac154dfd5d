package repository

import (
	"context"
	"time"

	"go-bom-graph/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditLog) error
	ListByPart(ctx context.Context, partID string, limit int) ([]model.AuditLog, error)
	ListSince(ctx context.Context, since time.Time) ([]model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByPart returns the newest entries first. A non-positive limit returns
// every entry. Ties are broken by id, comparing length first so AUD-1000000
// follows AUD-999999.
func (r *auditRepo) ListByPart(ctx context.Context, partID string, limit int) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	query := r.db.WithContext(ctx).
		Where("part_id = ?", partID).
		Order("recorded_at DESC").
		Order("LENGTH(id) DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

func (r *auditRepo) ListSince(ctx context.Context, since time.Time) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.WithContext(ctx).
		Select("id", "part_id", "action", "metadata", "recorded_at").
		Where("recorded_at >= ?", since).
		Order("recorded_at ASC").
		Find(&entries).Error
	return entries, err
}
