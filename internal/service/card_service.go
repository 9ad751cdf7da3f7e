package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"cardwallet/internal/errors"
	"cardwallet/internal/mailer"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
	"cardwallet/internal/validation"
)

// CardInput carries card fields for create and full update.
type CardInput struct {
	Name          string
	ShopID        uint
	Image         string
	CardNumber    string
	BarcodeNumber string
	Encoding      model.Encoding
}

// CardPatch carries optional card fields for partial update. Nil means keep.
type CardPatch struct {
	Name          *string
	ShopID        *uint
	Image         *string
	CardNumber    *string
	BarcodeNumber *string
	Encoding      *model.Encoding
}

// NewShopInput carries the embedded shop of a create-with-new-shop request.
type NewShopInput struct {
	Name     string
	GroupIDs []uint
}

// ShareResult tells the handler which of the two share outcomes happened.
type ShareResult struct {
	// Invited is true when no user with the email exists and an invitation
	// email was queued instead of creating an association.
	Invited bool
	Email   string
}

// CardService handles the card lifecycle: creation, editing, deletion,
// favourites, usage statistics and sharing.
type CardService interface {
	List(ctx context.Context, userID uint) ([]model.UserCard, error)
	Favorites(ctx context.Context, userID uint) ([]model.UserCard, error)
	Get(ctx context.Context, userID, cardID uint) (*model.Card, error)
	Create(ctx context.Context, userID uint, in CardInput) (*model.Card, error)
	CreateWithShop(ctx context.Context, userID uint, in CardInput, shop NewShopInput) (*model.Card, error)
	Update(ctx context.Context, userID, cardID uint, patch CardPatch) (*model.Card, error)
	Delete(ctx context.Context, userID, cardID uint) error
	SetFavourite(ctx context.Context, userID, cardID uint, favourite bool) (*model.UserCard, error)
	UpdateStatistics(ctx context.Context, userID, cardID uint, counter uint) (*model.UserCard, error)
	Share(ctx context.Context, userID, cardID uint, email string) (*ShareResult, error)
}

type cardService struct {
	cardRepo     repository.CardRepository
	userCardRepo repository.UserCardRepository
	shopRepo     repository.ShopRepository
	groupRepo    repository.GroupRepository
	userRepo     repository.UserRepository
	mail         mailer.Mailer
}

// NewCardService creates a new card service.
func NewCardService(
	cardRepo repository.CardRepository,
	userCardRepo repository.UserCardRepository,
	shopRepo repository.ShopRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	mail mailer.Mailer,
) CardService {
	return &cardService{
		cardRepo:     cardRepo,
		userCardRepo: userCardRepo,
		shopRepo:     shopRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		mail:         mail,
	}
}

// List returns the user's cards, newest first.
func (s *cardService) List(ctx context.Context, userID uint) ([]model.UserCard, error) {
	return s.userCardRepo.ListByUser(ctx, userID, false)
}

// Favorites returns the user's favourite cards.
func (s *cardService) Favorites(ctx context.Context, userID uint) ([]model.UserCard, error) {
	return s.userCardRepo.ListByUser(ctx, userID, true)
}

// Get returns a card visible to the user. Cards the user holds no association
// for are reported as not found, owner or not.
func (s *cardService) Get(ctx context.Context, userID, cardID uint) (*model.Card, error) {
	if _, err := s.findUserCard(ctx, userID, cardID); err != nil {
		return nil, err
	}
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// Create validates the payload and creates the card together with the
// creator's owner association.
func (s *cardService) Create(ctx context.Context, userID uint, in CardInput) (*model.Card, error) {
	fieldErrs := validateCardInput(in)
	if _, err := s.shopRepo.FindByID(ctx, in.ShopID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			fieldErrs.Add("shop", "shop not found")
		} else {
			return nil, fmt.Errorf("find shop: %w", err)
		}
	}
	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	card := newCard(in)
	if err := s.cardRepo.CreateOwned(ctx, card, userID); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return s.cardRepo.FindByID(ctx, card.ID)
}

// CreateWithShop creates an unverified shop and a card referencing it in one
// transaction, so no shop-without-card state is ever visible.
func (s *cardService) CreateWithShop(ctx context.Context, userID uint, in CardInput, shopIn NewShopInput) (*model.Card, error) {
	fieldErrs := validateCardInput(in)
	for _, msg := range validation.Name(shopIn.Name, validation.MaxShopNameLen) {
		fieldErrs.Add("shop_name", msg)
	}

	var groups []model.Group
	if len(shopIn.GroupIDs) > 0 {
		var err error
		groups, err = s.groupRepo.FindByIDs(ctx, shopIn.GroupIDs)
		if err != nil {
			return nil, fmt.Errorf("find groups: %w", err)
		}
		if len(groups) != len(shopIn.GroupIDs) {
			fieldErrs.Add("shop_group", "unknown group")
		}
	}
	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	// New shops always start unverified; curation happens in admin tooling.
	shop := &model.Shop{Name: shopIn.Name, Verified: false}
	card := newCard(in)
	if err := s.cardRepo.CreateOwnedWithShop(ctx, shop, groups, card, userID); err != nil {
		return nil, fmt.Errorf("create card with shop: %w", err)
	}
	return s.cardRepo.FindByID(ctx, card.ID)
}

// Update applies a partial update. Only the owner may edit, and the card must
// keep at least one of card number and barcode number.
func (s *cardService) Update(ctx context.Context, userID, cardID uint, patch CardPatch) (*model.Card, error) {
	userCard, err := s.findUserCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if !canEditCard(userCard) {
		return nil, errors.ErrNotCardOwner
	}

	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	fieldErrs := errors.FieldErrors{}
	if patch.Name != nil {
		card.Name = *patch.Name
		for _, msg := range validation.Name(card.Name, validation.MaxCardNameLen) {
			fieldErrs.Add("name", msg)
		}
	}
	if patch.ShopID != nil {
		if _, err := s.shopRepo.FindByID(ctx, *patch.ShopID); err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				fieldErrs.Add("shop", "shop not found")
			} else {
				return nil, fmt.Errorf("find shop: %w", err)
			}
		}
		card.ShopID = *patch.ShopID
	}
	if patch.Image != nil {
		card.Image = *patch.Image
	}
	if patch.CardNumber != nil {
		card.CardNumber = *patch.CardNumber
		for _, msg := range validation.CardNumber(card.CardNumber) {
			fieldErrs.Add("card_number", msg)
		}
	}
	if patch.BarcodeNumber != nil {
		card.BarcodeNumber = *patch.BarcodeNumber
		for _, msg := range validation.BarcodeNumber(card.BarcodeNumber) {
			fieldErrs.Add("barcode_number", msg)
		}
	}
	if patch.Encoding != nil {
		card.Encoding = *patch.Encoding
		if !card.Encoding.Valid() {
			fieldErrs.Add("encoding_type", validation.MsgUnknownEncoding)
		}
	}
	if !card.HasIdentifier() {
		fieldErrs.Add("card_number", validation.MsgNoCardIdentifier)
	}
	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	return s.cardRepo.FindByID(ctx, cardID)
}

// Delete removes the card for everyone when the requester owns it, and only
// the requester's association otherwise. Both paths report plain success; the
// caller observes the difference through later reads.
func (s *cardService) Delete(ctx context.Context, userID, cardID uint) error {
	userCard, err := s.findUserCard(ctx, userID, cardID)
	if err != nil {
		return err
	}

	if userCard.Owner {
		if err := s.cardRepo.DeleteOwned(ctx, cardID); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}
		return nil
	}
	if err := s.userCardRepo.Delete(ctx, userID, cardID); err != nil {
		return fmt.Errorf("remove card from list: %w", err)
	}
	return nil
}

// SetFavourite flips the favourite flag. Requests that would not change the
// state are rejected.
func (s *cardService) SetFavourite(ctx context.Context, userID, cardID uint, favourite bool) (*model.UserCard, error) {
	userCard, err := s.findUserCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if userCard.Favourite == favourite {
		return nil, errors.ErrStatusAsRequested
	}

	userCard.Favourite = favourite
	if err := s.userCardRepo.Save(ctx, userCard); err != nil {
		return nil, fmt.Errorf("save favourite: %w", err)
	}
	return s.withCard(ctx, userCard)
}

// UpdateStatistics sets the usage counter to a strictly greater value.
func (s *cardService) UpdateStatistics(ctx context.Context, userID, cardID uint, counter uint) (*model.UserCard, error) {
	userCard, err := s.findUserCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if counter <= userCard.UsageCounter {
		return nil, errors.ErrUsageCounterDecrease
	}

	userCard.UsageCounter = counter
	if err := s.userCardRepo.Save(ctx, userCard); err != nil {
		return nil, fmt.Errorf("save statistics: %w", err)
	}
	return s.withCard(ctx, userCard)
}

// Share grants another registered user a non-owning association for the card,
// or queues an invitation email when the address is not registered.
func (s *cardService) Share(ctx context.Context, userID, cardID uint, email string) (*ShareResult, error) {
	sharer, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.ErrUserNotFound
	}
	if sharer.Email == email {
		return nil, errors.ErrShareWithSelf
	}

	if _, err := s.findUserCard(ctx, userID, cardID); err != nil {
		return nil, err
	}
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	target, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		if err := s.mail.SendInvitation(ctx, email, sharer.Email, card.Name, card.Shop.Name); err != nil {
			return nil, fmt.Errorf("queue invitation: %w", err)
		}
		return &ShareResult{Invited: true, Email: email}, nil
	}

	if _, err := s.userCardRepo.Find(ctx, target.ID, cardID); err == nil {
		return nil, errors.ErrAlreadyShared
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing share: %w", err)
	}

	userCard := &model.UserCard{
		UserID:     target.ID,
		CardID:     cardID,
		Owner:      false,
		Favourite:  false,
		SharedByID: &userID,
	}
	if err := s.userCardRepo.Create(ctx, userCard); err != nil {
		// A concurrent share can win the race past the existence check; the
		// unique index turns that into a conflict, not a server error.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrAlreadyShared
		}
		return nil, fmt.Errorf("share card: %w", err)
	}
	return &ShareResult{Invited: false, Email: email}, nil
}

func (s *cardService) findUserCard(ctx context.Context, userID, cardID uint) (*model.UserCard, error) {
	userCard, err := s.userCardRepo.Find(ctx, userID, cardID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCardNotFound
		}
		return nil, fmt.Errorf("find user card: %w", err)
	}
	return userCard, nil
}

func (s *cardService) withCard(ctx context.Context, userCard *model.UserCard) (*model.UserCard, error) {
	card, err := s.cardRepo.FindByID(ctx, userCard.CardID)
	if err != nil {
		return nil, fmt.Errorf("load card: %w", err)
	}
	userCard.Card = *card
	return userCard, nil
}

func newCard(in CardInput) *model.Card {
	encoding := in.Encoding
	if encoding == "" {
		encoding = model.EncodingEAN13
	}
	return &model.Card{
		Name:          in.Name,
		ShopID:        in.ShopID,
		Image:         in.Image,
		CardNumber:    in.CardNumber,
		BarcodeNumber: in.BarcodeNumber,
		Encoding:      encoding,
	}
}

func validateCardInput(in CardInput) errors.FieldErrors {
	fieldErrs := validation.CollectFieldErrors(map[string][]string{
		"name":           validation.Name(in.Name, validation.MaxCardNameLen),
		"card_number":    validation.CardNumber(in.CardNumber),
		"barcode_number": validation.BarcodeNumber(in.BarcodeNumber),
	})
	if in.CardNumber == "" && in.BarcodeNumber == "" {
		fieldErrs.Add("card_number", validation.MsgNoCardIdentifier)
	}
	if in.Encoding != "" && !in.Encoding.Valid() {
		fieldErrs.Add("encoding_type", validation.MsgUnknownEncoding)
	}
	return fieldErrs
}
