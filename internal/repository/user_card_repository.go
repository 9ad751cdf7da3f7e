package repository

import (
	"context"

	"gorm.io/gorm"

	"cardwallet/internal/model"
)

// UserCardRepository defines persistence for the user↔card association rows.
type UserCardRepository interface {
	Create(ctx context.Context, userCard *model.UserCard) error
	Save(ctx context.Context, userCard *model.UserCard) error
	Delete(ctx context.Context, userID, cardID uint) error
	Find(ctx context.Context, userID, cardID uint) (*model.UserCard, error)
	// ListByUser returns the user's associations with cards, shops and groups
	// preloaded, newest first. With favouritesOnly set, only favourite rows.
	ListByUser(ctx context.Context, userID uint, favouritesOnly bool) ([]model.UserCard, error)
	// HasOwnedCardForShop reports whether the user owns at least one card
	// referencing the shop. This is the shop-mutation permission predicate.
	HasOwnedCardForShop(ctx context.Context, userID, shopID uint) (bool, error)
}

type userCardRepository struct {
	db *gorm.DB
}

// NewUserCardRepository creates a new user-card repository.
func NewUserCardRepository(db *gorm.DB) UserCardRepository {
	return &userCardRepository{db: db}
}

func (r *userCardRepository) Create(ctx context.Context, userCard *model.UserCard) error {
	return r.db.WithContext(ctx).Create(userCard).Error
}

func (r *userCardRepository) Save(ctx context.Context, userCard *model.UserCard) error {
	return r.db.WithContext(ctx).Save(userCard).Error
}

func (r *userCardRepository) Delete(ctx context.Context, userID, cardID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Delete(&model.UserCard{}).Error
}

func (r *userCardRepository) Find(ctx context.Context, userID, cardID uint) (*model.UserCard, error) {
	var userCard model.UserCard
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		First(&userCard).Error
	if err != nil {
		return nil, err
	}
	return &userCard, nil
}

func (r *userCardRepository) ListByUser(ctx context.Context, userID uint, favouritesOnly bool) ([]model.UserCard, error) {
	query := r.db.WithContext(ctx).
		Preload("Card").Preload("Card.Shop").Preload("Card.Shop.Groups").
		Where("user_id = ?", userID)
	if favouritesOnly {
		query = query.Where("favourite = ?", true)
	}

	var userCards []model.UserCard
	if err := query.Order("pub_date DESC").Find(&userCards).Error; err != nil {
		return nil, err
	}
	return userCards, nil
}

func (r *userCardRepository) HasOwnedCardForShop(ctx context.Context, userID, shopID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserCard{}).
		Joins("JOIN cards ON cards.id = user_cards.card_id").
		Where("user_cards.user_id = ? AND user_cards.owner = ? AND cards.shop_id = ?", userID, true, shopID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
