package repository

import (
	"context"
	"errors"

	"go-bom-graph/internal/model"

	"gorm.io/gorm"
)

type SequenceRepository interface {
	Current(ctx context.Context, name string) (int64, error)
	Advance(ctx context.Context, name string, value int64) error
	// Observed returns every value of column in the table of m that starts
	// with prefix.
	Observed(ctx context.Context, m any, column, prefix string) ([]string, error)
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db}
}

func (r *sequenceRepo) Current(ctx context.Context, name string) (int64, error) {
	var seq model.Sequence
	err := r.db.WithContext(ctx).First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return seq.Value, err
}

// Advance raises the stored high-water mark to value; it never lowers it.
func (r *sequenceRepo) Advance(ctx context.Context, name string, value int64) error {
	db := r.db.WithContext(ctx)

	var seq model.Sequence
	err := db.First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&model.Sequence{Name: name, Value: value}).Error
	}
	if err != nil {
		return err
	}
	if seq.Value >= value {
		return nil
	}
	return db.Model(&model.Sequence{}).Where("name = ?", name).Update("value", value).Error
}

func (r *sequenceRepo) Observed(ctx context.Context, m any, column, prefix string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).Model(m).
		Where(column+" LIKE ?", prefix+"%").
		Pluck(column, &values).Error
	return values, err
}
