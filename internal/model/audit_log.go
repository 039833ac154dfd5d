package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditPartCreated AuditAction = "PART_CREATED"
	AuditPartUpdated AuditAction = "PART_UPDATED"
	AuditLinkCreated AuditAction = "BOM_LINK_CREATED"
	AuditLinkUpdated AuditAction = "BOM_LINK_UPDATED"
	AuditLinkRemoved AuditAction = "BOM_LINK_REMOVED"
)

// AuditLog is append-only; rows are never updated after insert.
type AuditLog struct {
	ID        string            `gorm:"type:varchar(32);primaryKey" json:"id"`
	PartID    string            `gorm:"type:varchar(32);not null;index:idx_audit_part_time,priority:1" json:"partId"`
	Action    AuditAction       `gorm:"type:varchar(32);not null" json:"action"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	Timestamp time.Time         `gorm:"column:recorded_at;not null;index:idx_audit_part_time,priority:2" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
