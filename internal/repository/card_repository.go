package repository

import (
	"context"

	"gorm.io/gorm"

	"cardwallet/internal/model"
)

// CardRepository defines card persistence operations. Creation and owner
// deletion are composite: the card row and the owner's association row must
// move together, so those methods run inside one transaction.
type CardRepository interface {
	// CreateOwned creates the card and the creator's owner association atomically.
	CreateOwned(ctx context.Context, card *model.Card, userID uint) error
	// CreateOwnedWithShop additionally creates an unverified shop (with its
	// category set) for the card, all-or-nothing.
	CreateOwnedWithShop(ctx context.Context, shop *model.Shop, groups []model.Group, card *model.Card, userID uint) error
	Update(ctx context.Context, card *model.Card) error
	FindByID(ctx context.Context, id uint) (*model.Card, error)
	// DeleteOwned removes the card and every user's association with it.
	DeleteOwned(ctx context.Context, cardID uint) error
}

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) CreateOwned(ctx context.Context, card *model.Card, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserCard{
			UserID:    userID,
			CardID:    card.ID,
			Owner:     true,
			Favourite: false,
		}).Error
	})
}

func (r *cardRepository) CreateOwnedWithShop(ctx context.Context, shop *model.Shop, groups []model.Group, card *model.Card, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shop).Error; err != nil {
			return err
		}
		if len(groups) > 0 {
			if err := tx.Model(shop).Association("Groups").Replace(groups); err != nil {
				return err
			}
		}
		card.ShopID = shop.ID
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserCard{
			UserID:    userID,
			CardID:    card.ID,
			Owner:     true,
			Favourite: false,
		}).Error
	})
}

func (r *cardRepository) Update(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Omit("Shop").Save(card).Error
}

func (r *cardRepository) FindByID(ctx context.Context, id uint) (*model.Card, error) {
	var card model.Card
	err := r.db.WithContext(ctx).Preload("Shop").Preload("Shop.Groups").
		First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *cardRepository) DeleteOwned(ctx context.Context, cardID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardID).Delete(&model.UserCard{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Card{}, cardID).Error
	})
}
