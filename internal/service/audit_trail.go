package service

import (
	"context"
	"fmt"
	"time"

	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
)

// AuditTrail appends audit entries inside the caller's transaction.
type AuditTrail struct {
	ids *Counter
	now func() time.Time
}

func NewAuditTrail() *AuditTrail {
	return &AuditTrail{
		ids: NewCounter("audit_id", "AUD-", 6, &model.AuditLog{}, "id"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuditTrail) Load(ctx context.Context, store repository.Store) error {
	return a.ids.Load(ctx, store)
}

func (a *AuditTrail) Record(ctx context.Context, tx repository.Store, partID string, action model.AuditAction, message string, metadata map[string]any) (*model.AuditLog, error) {
	id, n, err := a.ids.Next()
	if err != nil {
		return nil, err
	}
	entry := &model.AuditLog{
		ID:        id,
		PartID:    partID,
		Action:    action,
		Message:   message,
		Metadata:  metadata,
		Timestamp: a.now(),
	}
	if err := tx.Audits().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending audit entry: %w", err)
	}
	if err := a.ids.Persist(ctx, tx, n); err != nil {
		return nil, err
	}
	return entry, nil
}
