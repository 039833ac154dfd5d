package model

// Sequence stores the highest number ever issued for a named counter.
type Sequence struct {
	Name  string `gorm:"type:varchar(32);primaryKey"`
	Value int64  `gorm:"not null"`
}

func (Sequence) TableName() string {
	return "sequences"
}
