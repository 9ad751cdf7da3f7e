package repository

import (
	"context"

	"gorm.io/gorm"

	"cardwallet/internal/model"
)

// ShopRepository defines shop persistence operations.
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	Update(ctx context.Context, shop *model.Shop) error
	// ReplaceGroups swaps the shop's category set.
	ReplaceGroups(ctx context.Context, shop *model.Shop, groups []model.Group) error
	FindByID(ctx context.Context, id uint) (*model.Shop, error)
	// FindVerifiedByID finds a shop only if it is verified.
	FindVerifiedByID(ctx context.Context, id uint) (*model.Shop, error)
	ListVerified(ctx context.Context) ([]model.Shop, error)
}

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository builds a GORM-backed repository.
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepository) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Omit("Groups").Save(shop).Error
}

func (r *shopRepository) ReplaceGroups(ctx context.Context, shop *model.Shop, groups []model.Group) error {
	return r.db.WithContext(ctx).Model(shop).Association("Groups").Replace(groups)
}

func (r *shopRepository) FindByID(ctx context.Context, id uint) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Preload("Groups").First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindVerifiedByID(ctx context.Context, id uint) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Preload("Groups").
		Where("verified = ?", true).First(&shop, id).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) ListVerified(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).Preload("Groups").
		Where("verified = ?", true).Order("name").Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}
