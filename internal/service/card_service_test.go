package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"cardwallet/internal/errors"
	"cardwallet/internal/model"
)

// MockCardRepository is a mock implementation of CardRepository.
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) CreateOwned(ctx context.Context, card *model.Card, userID uint) error {
	args := m.Called(ctx, card, userID)
	if args.Error(0) == nil {
		card.ID = 1
	}
	return args.Error(0)
}

func (m *MockCardRepository) CreateOwnedWithShop(ctx context.Context, shop *model.Shop, groups []model.Group, card *model.Card, userID uint) error {
	args := m.Called(ctx, shop, groups, card, userID)
	if args.Error(0) == nil {
		shop.ID = 1
		card.ID = 1
		card.ShopID = shop.ID
	}
	return args.Error(0)
}

func (m *MockCardRepository) Update(ctx context.Context, card *model.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) FindByID(ctx context.Context, id uint) (*model.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Card), args.Error(1)
}

func (m *MockCardRepository) DeleteOwned(ctx context.Context, cardID uint) error {
	args := m.Called(ctx, cardID)
	return args.Error(0)
}

// MockUserCardRepository is a mock implementation of UserCardRepository.
type MockUserCardRepository struct {
	mock.Mock
}

func (m *MockUserCardRepository) Create(ctx context.Context, userCard *model.UserCard) error {
	args := m.Called(ctx, userCard)
	return args.Error(0)
}

func (m *MockUserCardRepository) Save(ctx context.Context, userCard *model.UserCard) error {
	args := m.Called(ctx, userCard)
	return args.Error(0)
}

func (m *MockUserCardRepository) Delete(ctx context.Context, userID, cardID uint) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

func (m *MockUserCardRepository) Find(ctx context.Context, userID, cardID uint) (*model.UserCard, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserCard), args.Error(1)
}

func (m *MockUserCardRepository) ListByUser(ctx context.Context, userID uint, favouritesOnly bool) ([]model.UserCard, error) {
	args := m.Called(ctx, userID, favouritesOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserCard), args.Error(1)
}

func (m *MockUserCardRepository) HasOwnedCardForShop(ctx context.Context, userID, shopID uint) (bool, error) {
	args := m.Called(ctx, userID, shopID)
	return args.Bool(0), args.Error(1)
}

// MockShopRepository is a mock implementation of ShopRepository.
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, shop *model.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) Update(ctx context.Context, shop *model.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) ReplaceGroups(ctx context.Context, shop *model.Shop, groups []model.Group) error {
	args := m.Called(ctx, shop, groups)
	return args.Error(0)
}

func (m *MockShopRepository) FindByID(ctx context.Context, id uint) (*model.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) FindVerifiedByID(ctx context.Context, id uint) (*model.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) ListVerified(ctx context.Context) ([]model.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Shop), args.Error(1)
}

// MockGroupRepository is a mock implementation of GroupRepository.
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *model.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) List(ctx context.Context) ([]model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Group, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

type cardServiceMocks struct {
	cardRepo     *MockCardRepository
	userCardRepo *MockUserCardRepository
	shopRepo     *MockShopRepository
	groupRepo    *MockGroupRepository
	userRepo     *MockUserRepository
	mail         *MockMailer
}

func newTestCardService() (CardService, *cardServiceMocks) {
	m := &cardServiceMocks{
		cardRepo:     new(MockCardRepository),
		userCardRepo: new(MockUserCardRepository),
		shopRepo:     new(MockShopRepository),
		groupRepo:    new(MockGroupRepository),
		userRepo:     new(MockUserRepository),
		mail:         new(MockMailer),
	}
	svc := NewCardService(m.cardRepo, m.userCardRepo, m.shopRepo, m.groupRepo, m.userRepo, m.mail)
	return svc, m
}

func (m *cardServiceMocks) assertExpectations(t *testing.T) {
	m.cardRepo.AssertExpectations(t)
	m.userCardRepo.AssertExpectations(t)
	m.shopRepo.AssertExpectations(t)
	m.groupRepo.AssertExpectations(t)
	m.userRepo.AssertExpectations(t)
	m.mail.AssertExpectations(t)
}

func TestCardService_Create(t *testing.T) {
	tests := []struct {
		name       string
		input      CardInput
		setupMocks func(m *cardServiceMocks)
		wantFields []string
	}{
		{
			name:  "successful create defaults the encoding",
			input: CardInput{Name: "Grocery card", ShopID: 2, CardNumber: "12345"},
			setupMocks: func(m *cardServiceMocks) {
				m.shopRepo.On("FindByID", mock.Anything, uint(2)).
					Return(&model.Shop{ID: 2, Name: "GreenMart", Verified: true}, nil)
				m.cardRepo.On("CreateOwned", mock.Anything, mock.MatchedBy(func(c *model.Card) bool {
					return c.Encoding == model.EncodingEAN13
				}), uint(1)).Return(nil)
				m.cardRepo.On("FindByID", mock.Anything, uint(1)).
					Return(&model.Card{ID: 1, Name: "Grocery card", ShopID: 2, CardNumber: "12345"}, nil)
			},
		},
		{
			name:       "both identifiers missing",
			input:      CardInput{Name: "Grocery card", ShopID: 2},
			setupMocks: func(m *cardServiceMocks) {
				m.shopRepo.On("FindByID", mock.Anything, uint(2)).
					Return(&model.Shop{ID: 2}, nil)
			},
			wantFields: []string{"card_number"},
		},
		{
			name:       "unknown shop",
			input:      CardInput{Name: "Grocery card", ShopID: 99, CardNumber: "12345"},
			setupMocks: func(m *cardServiceMocks) {
				m.shopRepo.On("FindByID", mock.Anything, uint(99)).
					Return(nil, gorm.ErrRecordNotFound)
			},
			wantFields: []string{"shop"},
		},
		{
			name:       "unknown encoding",
			input:      CardInput{Name: "Grocery card", ShopID: 2, CardNumber: "12345", Encoding: "morse"},
			setupMocks: func(m *cardServiceMocks) {
				m.shopRepo.On("FindByID", mock.Anything, uint(2)).
					Return(&model.Shop{ID: 2}, nil)
			},
			wantFields: []string{"encoding_type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestCardService()
			tt.setupMocks(m)

			card, err := svc.Create(context.Background(), 1, tt.input)

			if len(tt.wantFields) > 0 {
				var fieldErrs errors.FieldErrors
				assert.ErrorAs(t, err, &fieldErrs)
				for _, field := range tt.wantFields {
					assert.Contains(t, fieldErrs, field)
				}
				assert.Nil(t, card)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, card)
			}
			m.assertExpectations(t)
		})
	}
}

func TestCardService_CreateWithShop(t *testing.T) {
	t.Run("creates an unverified shop with the card", func(t *testing.T) {
		svc, m := newTestCardService()
		groups := []model.Group{{ID: 3, Name: "Grocery"}}
		m.groupRepo.On("FindByIDs", mock.Anything, []uint{3}).Return(groups, nil)
		m.cardRepo.On("CreateOwnedWithShop", mock.Anything,
			mock.MatchedBy(func(s *model.Shop) bool { return s.Name == "Corner shop" && !s.Verified }),
			groups, mock.Anything, uint(1)).Return(nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(1)).
			Return(&model.Card{ID: 1, Name: "Corner card", ShopID: 1}, nil)

		card, err := svc.CreateWithShop(context.Background(), 1,
			CardInput{Name: "Corner card", BarcodeNumber: "987"},
			NewShopInput{Name: "Corner shop", GroupIDs: []uint{3}})

		assert.NoError(t, err)
		assert.NotNil(t, card)
		m.assertExpectations(t)
	})

	t.Run("unknown group", func(t *testing.T) {
		svc, m := newTestCardService()
		m.groupRepo.On("FindByIDs", mock.Anything, []uint{3, 99}).
			Return([]model.Group{{ID: 3}}, nil)

		_, err := svc.CreateWithShop(context.Background(), 1,
			CardInput{Name: "Corner card", BarcodeNumber: "987"},
			NewShopInput{Name: "Corner shop", GroupIDs: []uint{3, 99}})

		var fieldErrs errors.FieldErrors
		assert.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "shop_group")
	})
}

func TestCardService_Get(t *testing.T) {
	t.Run("card without association is not found, even if it exists", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(nil, gorm.ErrRecordNotFound)

		card, err := svc.Get(context.Background(), 1, 42)
		assert.ErrorIs(t, err, errors.ErrCardNotFound)
		assert.Nil(t, card)
		m.assertExpectations(t)
	})

	t.Run("shared card is visible to the holder", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: false}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).
			Return(&model.Card{ID: 42, Name: "Shared card"}, nil)

		card, err := svc.Get(context.Background(), 1, 42)
		assert.NoError(t, err)
		assert.Equal(t, "Shared card", card.Name)
	})
}

func TestCardService_Update(t *testing.T) {
	name := "Renamed card"
	emptyNumber := ""

	t.Run("holder without ownership may not edit", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: false}, nil)

		_, err := svc.Update(context.Background(), 1, 42, CardPatch{Name: &name})
		assert.ErrorIs(t, err, errors.ErrNotCardOwner)
		m.assertExpectations(t)
	})

	t.Run("owner renames the card", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).
			Return(&model.Card{ID: 42, Name: "Old name", CardNumber: "123"}, nil).Twice()
		m.cardRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Card) bool {
			return c.Name == name
		})).Return(nil)

		card, err := svc.Update(context.Background(), 1, 42, CardPatch{Name: &name})
		assert.NoError(t, err)
		assert.NotNil(t, card)
		m.assertExpectations(t)
	})

	t.Run("clearing the last identifier is rejected", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).
			Return(&model.Card{ID: 42, Name: "Card", CardNumber: "123"}, nil)

		_, err := svc.Update(context.Background(), 1, 42, CardPatch{CardNumber: &emptyNumber})
		var fieldErrs errors.FieldErrors
		assert.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "card_number")
	})
}

func TestCardService_Delete(t *testing.T) {
	t.Run("owner removes the card for everyone", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("DeleteOwned", mock.Anything, uint(42)).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), 1, 42))
		m.assertExpectations(t)
		m.userCardRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("holder removes only their own association", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(2), uint(42)).
			Return(&model.UserCard{UserID: 2, CardID: 42, Owner: false}, nil)
		m.userCardRepo.On("Delete", mock.Anything, uint(2), uint(42)).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), 2, 42))
		m.assertExpectations(t)
		m.cardRepo.AssertNotCalled(t, "DeleteOwned", mock.Anything, mock.Anything)
	})

	t.Run("no association", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(3), uint(42)).
			Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.Delete(context.Background(), 3, 42), errors.ErrCardNotFound)
	})
}

func TestCardService_SetFavourite(t *testing.T) {
	t.Run("marks a card as favourite", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Favourite: false}, nil)
		m.userCardRepo.On("Save", mock.Anything, mock.MatchedBy(func(uc *model.UserCard) bool {
			return uc.Favourite
		})).Return(nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).
			Return(&model.Card{ID: 42}, nil)

		userCard, err := svc.SetFavourite(context.Background(), 1, 42, true)
		assert.NoError(t, err)
		assert.True(t, userCard.Favourite)
		m.assertExpectations(t)
	})

	t.Run("marking an already favourite card is a conflict", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Favourite: true}, nil)

		_, err := svc.SetFavourite(context.Background(), 1, 42, true)
		assert.ErrorIs(t, err, errors.ErrStatusAsRequested)
		m.userCardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unmarking a non-favourite card is a conflict", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Favourite: false}, nil)

		_, err := svc.SetFavourite(context.Background(), 1, 42, false)
		assert.ErrorIs(t, err, errors.ErrStatusAsRequested)
	})
}

func TestCardService_UpdateStatistics(t *testing.T) {
	tests := []struct {
		name    string
		current uint
		next    uint
		wantErr error
	}{
		{name: "counter increases", current: 3, next: 4},
		{name: "counter jump is allowed", current: 3, next: 10},
		{name: "same value is rejected", current: 3, next: 3, wantErr: errors.ErrUsageCounterDecrease},
		{name: "lower value is rejected", current: 3, next: 2, wantErr: errors.ErrUsageCounterDecrease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestCardService()
			m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
				Return(&model.UserCard{UserID: 1, CardID: 42, UsageCounter: tt.current}, nil)
			if tt.wantErr == nil {
				m.userCardRepo.On("Save", mock.Anything, mock.MatchedBy(func(uc *model.UserCard) bool {
					return uc.UsageCounter == tt.next
				})).Return(nil)
				m.cardRepo.On("FindByID", mock.Anything, uint(42)).
					Return(&model.Card{ID: 42}, nil)
			}

			userCard, err := svc.UpdateStatistics(context.Background(), 1, 42, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.next, userCard.UsageCounter)
			}
			m.assertExpectations(t)
		})
	}
}

func TestCardService_Share(t *testing.T) {
	sharer := &model.User{ID: 1, Email: "owner@example.com"}
	card := &model.Card{ID: 42, Name: "Grocery card", Shop: model.Shop{Name: "GreenMart"}}

	t.Run("shares with a registered user", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userRepo.On("FindByID", mock.Anything, uint(1)).Return(sharer, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).Return(card, nil)
		m.userRepo.On("FindByEmail", mock.Anything, "friend@example.com").
			Return(&model.User{ID: 2, Email: "friend@example.com"}, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(2), uint(42)).
			Return(nil, gorm.ErrRecordNotFound)
		m.userCardRepo.On("Create", mock.Anything, mock.MatchedBy(func(uc *model.UserCard) bool {
			return uc.UserID == 2 && uc.CardID == 42 && !uc.Owner && uc.SharedByID != nil && *uc.SharedByID == 1
		})).Return(nil)

		result, err := svc.Share(context.Background(), 1, 42, "friend@example.com")
		assert.NoError(t, err)
		assert.False(t, result.Invited)
		assert.Equal(t, "friend@example.com", result.Email)
		m.assertExpectations(t)
	})

	t.Run("unknown email gets an invitation instead", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userRepo.On("FindByID", mock.Anything, uint(1)).Return(sharer, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).Return(card, nil)
		m.userRepo.On("FindByEmail", mock.Anything, "stranger@example.com").
			Return(nil, gorm.ErrRecordNotFound)
		m.mail.On("SendInvitation", mock.Anything, "stranger@example.com",
			"owner@example.com", "Grocery card", "GreenMart").Return(nil)

		result, err := svc.Share(context.Background(), 1, 42, "stranger@example.com")
		assert.NoError(t, err)
		assert.True(t, result.Invited)
		m.assertExpectations(t)
		m.userCardRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("sharing with yourself is rejected", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userRepo.On("FindByID", mock.Anything, uint(1)).Return(sharer, nil)

		_, err := svc.Share(context.Background(), 1, 42, "owner@example.com")
		assert.ErrorIs(t, err, errors.ErrShareWithSelf)
	})

	t.Run("target already holds the card", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userRepo.On("FindByID", mock.Anything, uint(1)).Return(sharer, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).Return(card, nil)
		m.userRepo.On("FindByEmail", mock.Anything, "friend@example.com").
			Return(&model.User{ID: 2, Email: "friend@example.com"}, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(2), uint(42)).
			Return(&model.UserCard{UserID: 2, CardID: 42}, nil)

		_, err := svc.Share(context.Background(), 1, 42, "friend@example.com")
		assert.ErrorIs(t, err, errors.ErrAlreadyShared)
	})

	t.Run("concurrent share losing the race is a conflict, not a server error", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userRepo.On("FindByID", mock.Anything, uint(1)).Return(sharer, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(&model.UserCard{UserID: 1, CardID: 42, Owner: true}, nil)
		m.cardRepo.On("FindByID", mock.Anything, uint(42)).Return(card, nil)
		m.userRepo.On("FindByEmail", mock.Anything, "friend@example.com").
			Return(&model.User{ID: 2, Email: "friend@example.com"}, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(2), uint(42)).
			Return(nil, gorm.ErrRecordNotFound)
		m.userCardRepo.On("Create", mock.Anything, mock.Anything).
			Return(gorm.ErrDuplicatedKey)

		_, err := svc.Share(context.Background(), 1, 42, "friend@example.com")
		assert.ErrorIs(t, err, errors.ErrAlreadyShared)
	})

	t.Run("sharer must hold the card", func(t *testing.T) {
		svc, m := newTestCardService()
		m.userRepo.On("FindByID", mock.Anything, uint(1)).Return(sharer, nil)
		m.userCardRepo.On("Find", mock.Anything, uint(1), uint(42)).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Share(context.Background(), 1, 42, "friend@example.com")
		assert.ErrorIs(t, err, errors.ErrCardNotFound)
	})
}
