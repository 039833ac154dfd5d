package repository

import (
	"context"

	"go-bom-graph/internal/model"

	"gorm.io/gorm"
)

type BomLinkRepository interface {
	Create(ctx context.Context, link *model.BomLink) error
	UpdateQuantity(ctx context.Context, parentID, childID string, quantity int) error
	Delete(ctx context.Context, parentID, childID string) error
	Find(ctx context.Context, parentID, childID string) (*model.BomLink, error)
	ChildLinks(ctx context.Context, parentID string) ([]model.BomLink, error)
	ParentLinks(ctx context.Context, childID string) ([]model.BomLink, error)
	ChildIDs(ctx context.Context, parentID string) ([]string, error)
	ParentIDs(ctx context.Context, childID string) ([]string, error)
}

type bomLinkRepo struct {
	db *gorm.DB
}

func NewBomLinkRepo(db *gorm.DB) BomLinkRepository {
	return &bomLinkRepo{db}
}

func (r *bomLinkRepo) Create(ctx context.Context, link *model.BomLink) error {
	return r.db.WithContext(ctx).Omit("Parent", "Child").Create(link).Error
}

func (r *bomLinkRepo) UpdateQuantity(ctx context.Context, parentID, childID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&model.BomLink{}).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bomLinkRepo) Delete(ctx context.Context, parentID, childID string) error {
	res := r.db.WithContext(ctx).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Delete(&model.BomLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bomLinkRepo) Find(ctx context.Context, parentID, childID string) (*model.BomLink, error) {
	var link model.BomLink
	err := r.db.WithContext(ctx).
		First(&link, "parent_id = ? AND child_id = ?", parentID, childID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// ChildLinks returns outgoing links ordered by the child's part number, with
// the child preloaded.
func (r *bomLinkRepo) ChildLinks(ctx context.Context, parentID string) ([]model.BomLink, error) {
	var links []model.BomLink
	err := r.db.WithContext(ctx).
		Joins("Child").
		Where("bom_links.parent_id = ?", parentID).
		Order(partNumberOrder(r.db.Dialector.Name(), "Child")).
		Find(&links).Error
	return links, err
}

// ParentLinks returns incoming links ordered by the parent's part number,
// with the parent preloaded.
func (r *bomLinkRepo) ParentLinks(ctx context.Context, childID string) ([]model.BomLink, error) {
	var links []model.BomLink
	err := r.db.WithContext(ctx).
		Joins("Parent").
		Where("bom_links.child_id = ?", childID).
		Order(partNumberOrder(r.db.Dialector.Name(), "Parent")).
		Find(&links).Error
	return links, err
}

func (r *bomLinkRepo) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.BomLink{}).
		Where("parent_id = ?", parentID).
		Pluck("child_id", &ids).Error
	return ids, err
}

func (r *bomLinkRepo) ParentIDs(ctx context.Context, childID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.BomLink{}).
		Where("child_id = ?", childID).
		Pluck("parent_id", &ids).Error
	return ids, err
}
