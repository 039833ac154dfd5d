package model

import "time"

// BomLink is a parent->child edge; (ParentID, ChildID) is its identity.
type BomLink struct {
	ParentID  string    `gorm:"type:varchar(32);primaryKey" json:"parentId"`
	ChildID   string    `gorm:"type:varchar(32);primaryKey;index" json:"childId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Parent *Part `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	Child  *Part `gorm:"foreignKey:ChildID;references:ID;constraint:OnDelete:CASCADE" json:"child,omitempty"`
}

func (BomLink) TableName() string {
	return "bom_links"
}
