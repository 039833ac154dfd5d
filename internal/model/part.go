package model

type Part struct {
	BaseModel
	PartNumber  string `gorm:"type:varchar(64);uniqueIndex;not null" json:"partNumber"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Part) TableName() string {
	return "parts"
}

func (p *Part) Summary() PartSummary {
	return PartSummary{ID: p.ID, PartNumber: p.PartNumber, Name: p.Name}
}

type PartSummary struct {
	ID         string `json:"id"`
	PartNumber string `json:"partNumber"`
	Name       string `json:"name"`
}

// LinkedPart is a neighbour of a part together with the quantity on the
// connecting edge.
type LinkedPart struct {
	PartSummary
	Quantity int `json:"quantity"`
}

type PartDetails struct {
	Part        Part         `json:"part"`
	ParentParts []LinkedPart `json:"parentParts"`
	ChildParts  []LinkedPart `json:"childParts"`
	ParentCount int          `json:"parentCount"`
	ChildCount  int          `json:"childCount"`
}
