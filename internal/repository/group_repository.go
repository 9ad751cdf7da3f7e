package repository

import (
	"context"

	"gorm.io/gorm"

	"cardwallet/internal/model"
)

// GroupRepository defines category persistence operations. Groups are written
// only by the seed tool; the API reads them.
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	List(ctx context.Context) ([]model.Group, error)
	FindByID(ctx context.Context, id uint) (*model.Group, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository builds a GORM-backed repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) List(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
