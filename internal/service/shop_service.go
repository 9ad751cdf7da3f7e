package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cardwallet/internal/cache"
	"cardwallet/internal/errors"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
	"cardwallet/internal/validation"
)

const (
	verifiedShopsCacheKey = "shops:verified"
	verifiedShopsCacheTTL = 5 * time.Minute
)

// ShopUpdate carries the editable shop fields: name and category set.
type ShopUpdate struct {
	Name     *string
	GroupIDs *[]uint
}

// ShopService handles the shop surface: verified listing and the single
// user-facing mutation on unverified shops.
type ShopService interface {
	// ListVerified returns curated shops only. Unverified shops are reachable
	// solely through cards that reference them.
	ListVerified(ctx context.Context) ([]model.Shop, error)
	GetVerified(ctx context.Context, id uint) (*model.Shop, error)
	// Update edits name/groups of an unverified shop. The requester must own
	// a card referencing the shop. Verified shops are immutable here; the
	// unverified→verified transition belongs to admin tooling only.
	Update(ctx context.Context, userID, shopID uint, update ShopUpdate) (*model.Shop, error)
}

type shopService struct {
	shopRepo     repository.ShopRepository
	groupRepo    repository.GroupRepository
	userCardRepo repository.UserCardRepository
	cache        *cache.Client
}

// NewShopService creates a new shop service.
func NewShopService(
	shopRepo repository.ShopRepository,
	groupRepo repository.GroupRepository,
	userCardRepo repository.UserCardRepository,
	cacheClient *cache.Client,
) ShopService {
	return &shopService{
		shopRepo:     shopRepo,
		groupRepo:    groupRepo,
		userCardRepo: userCardRepo,
		cache:        cacheClient,
	}
}

func (s *shopService) ListVerified(ctx context.Context) ([]model.Shop, error) {
	if data, err := s.cache.Get(ctx, verifiedShopsCacheKey); err == nil && data != nil {
		var shops []model.Shop
		if err := json.Unmarshal(data, &shops); err == nil {
			return shops, nil
		}
	}

	shops, err := s.shopRepo.ListVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}

	if data, err := json.Marshal(shops); err == nil {
		s.cache.Set(ctx, verifiedShopsCacheKey, data, verifiedShopsCacheTTL)
	}
	return shops, nil
}

func (s *shopService) GetVerified(ctx context.Context, id uint) (*model.Shop, error) {
	shop, err := s.shopRepo.FindVerifiedByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrShopNotFound
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return shop, nil
}

func (s *shopService) Update(ctx context.Context, userID, shopID uint, update ShopUpdate) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrShopNotFound
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}

	ownsCard, err := s.userCardRepo.HasOwnedCardForShop(ctx, userID, shopID)
	if err != nil {
		return nil, fmt.Errorf("check shop ownership: %w", err)
	}
	if !canEditShop(shop, ownsCard) {
		return nil, errors.ErrShopImmutable
	}

	fieldErrs := errors.FieldErrors{}
	if update.Name != nil {
		shop.Name = *update.Name
		for _, msg := range validation.Name(shop.Name, validation.MaxShopNameLen) {
			fieldErrs.Add("name", msg)
		}
	}

	var groups []model.Group
	if update.GroupIDs != nil {
		groups, err = s.groupRepo.FindByIDs(ctx, *update.GroupIDs)
		if err != nil {
			return nil, fmt.Errorf("find groups: %w", err)
		}
		if len(groups) != len(*update.GroupIDs) {
			fieldErrs.Add("group", "unknown group")
		}
	}
	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	if update.Name != nil {
		if err := s.shopRepo.Update(ctx, shop); err != nil {
			return nil, fmt.Errorf("update shop: %w", err)
		}
	}
	if update.GroupIDs != nil {
		if err := s.shopRepo.ReplaceGroups(ctx, shop, groups); err != nil {
			return nil, fmt.Errorf("replace shop groups: %w", err)
		}
	}

	s.cache.Delete(ctx, verifiedShopsCacheKey)
	return s.shopRepo.FindByID(ctx, shopID)
}
