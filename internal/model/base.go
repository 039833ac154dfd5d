package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrMissingID = errors.New("record id must be assigned before insert")

// BaseModel carries the opaque string ID and timestamps shared by persisted
// records. IDs are allocated by the service layer, never by the database.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		return ErrMissingID
	}
	return nil
}
