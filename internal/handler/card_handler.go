package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"cardwallet/internal/model"
	"cardwallet/internal/service"
)

// CardHandler handles card endpoints.
type CardHandler struct {
	cardService service.CardService
}

// NewCardHandler creates a new card handler.
func NewCardHandler(cardService service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CardCreateRequest represents a card creation request.
type CardCreateRequest struct {
	Name          string `json:"name" validate:"required"`
	Shop          uint   `json:"shop" validate:"required"`
	Image         string `json:"image"`
	CardNumber    string `json:"card_number"`
	BarcodeNumber string `json:"barcode_number"`
	EncodingType  string `json:"encoding_type"`
}

// CardPatchRequest represents a partial card update. Absent fields are kept.
type CardPatchRequest struct {
	Name          *string `json:"name"`
	Shop          *uint   `json:"shop"`
	Image         *string `json:"image"`
	CardNumber    *string `json:"card_number"`
	BarcodeNumber *string `json:"barcode_number"`
	EncodingType  *string `json:"encoding_type"`
}

// NewShopRequest is the embedded shop of a create-with-new-shop request.
type NewShopRequest struct {
	Name  string `json:"name" validate:"required"`
	Group []uint `json:"group"`
}

// CardWithShopCreateRequest creates a card together with a new shop.
type CardWithShopCreateRequest struct {
	Name          string         `json:"name" validate:"required"`
	Shop          NewShopRequest `json:"shop" validate:"required"`
	Image         string         `json:"image"`
	CardNumber    string         `json:"card_number"`
	BarcodeNumber string         `json:"barcode_number"`
	EncodingType  string         `json:"encoding_type"`
}

// StatisticsRequest carries a proposed usage counter value.
type StatisticsRequest struct {
	UsageCounter uint `json:"usage_counter" validate:"required,min=1"`
}

// ShareRequest carries the email of the user to share a card with.
type ShareRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// List godoc
// @Summary List the current user's cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserCard
// @Failure 401 {object} errors.Envelope
// @Router /cards [get]
func (h *CardHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	userCards, err := h.cardService.List(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userCards)
}

// Favorites godoc
// @Summary List the current user's favourite cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserCard
// @Failure 401 {object} errors.Envelope
// @Router /cards/favorites [get]
func (h *CardHandler) Favorites(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	userCards, err := h.cardService.Favorites(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userCards)
}

// Get godoc
// @Summary Get one card
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} model.Card
// @Failure 404 {object} errors.Envelope
// @Router /cards/{id} [get]
func (h *CardHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cardID, err := pathID(c)
	if err != nil {
		return err
	}

	card, err := h.cardService.Get(c.Request().Context(), userID, cardID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

// Create godoc
// @Summary Add a new card
// @Description Creates a card at an existing shop and makes the requester its owner. Card number and/or barcode number must be set.
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CardCreateRequest true "Card data"
// @Success 201 {object} model.Card
// @Failure 400 {object} errors.Envelope
// @Router /cards [post]
func (h *CardHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CardCreateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	card, err := h.cardService.Create(c.Request().Context(), userID, service.CardInput{
		Name:          req.Name,
		ShopID:        req.Shop,
		Image:         req.Image,
		CardNumber:    req.CardNumber,
		BarcodeNumber: req.BarcodeNumber,
		Encoding:      model.Encoding(req.EncodingType),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, card)
}

// CreateWithShop godoc
// @Summary Add a new card and a new shop
// @Description Creates an unverified shop and a card referencing it atomically; the requester becomes the card owner.
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CardWithShopCreateRequest true "Card and shop data"
// @Success 201 {object} model.Card
// @Failure 400 {object} errors.Envelope
// @Router /cards/new-shop [post]
func (h *CardHandler) CreateWithShop(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CardWithShopCreateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	card, err := h.cardService.CreateWithShop(c.Request().Context(), userID,
		service.CardInput{
			Name:          req.Name,
			Image:         req.Image,
			CardNumber:    req.CardNumber,
			BarcodeNumber: req.BarcodeNumber,
			Encoding:      model.Encoding(req.EncodingType),
		},
		service.NewShopInput{
			Name:     req.Shop.Name,
			GroupIDs: req.Shop.Group,
		})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, card)
}

// Update godoc
// @Summary Edit a card
// @Description Partially edits a card. Only the owner may edit; the card must keep a card number and/or barcode number.
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Param request body CardPatchRequest true "Fields to change"
// @Success 200 {object} model.Card
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /cards/{id} [patch]
func (h *CardHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cardID, err := pathID(c)
	if err != nil {
		return err
	}

	var req CardPatchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	patch := service.CardPatch{
		Name:          req.Name,
		ShopID:        req.Shop,
		Image:         req.Image,
		CardNumber:    req.CardNumber,
		BarcodeNumber: req.BarcodeNumber,
	}
	if req.EncodingType != nil {
		encoding := model.Encoding(*req.EncodingType)
		patch.Encoding = &encoding
	}

	card, err := h.cardService.Update(c.Request().Context(), userID, cardID, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

// Delete godoc
// @Summary Delete a card
// @Description Owners delete the card for everyone; other holders only remove it from their own list. The response is the same either way.
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.Envelope
// @Router /cards/{id} [delete]
func (h *CardHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cardID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.cardService.Delete(c.Request().Context(), userID, cardID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "card deleted",
	})
}

// Favorite godoc
// @Summary Add a card to favourites
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 201 {object} model.UserCard
// @Failure 404 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /cards/{id}/favorite [post]
func (h *CardHandler) Favorite(c echo.Context) error {
	return h.setFavourite(c, true, http.StatusCreated)
}

// Unfavorite godoc
// @Summary Remove a card from favourites
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 200 {object} model.UserCard
// @Failure 404 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /cards/{id}/favorite [delete]
func (h *CardHandler) Unfavorite(c echo.Context) error {
	return h.setFavourite(c, false, http.StatusOK)
}

func (h *CardHandler) setFavourite(c echo.Context, favourite bool, successStatus int) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cardID, err := pathID(c)
	if err != nil {
		return err
	}

	userCard, err := h.cardService.SetFavourite(c.Request().Context(), userID, cardID, favourite)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(successStatus, userCard)
}

// Statistics godoc
// @Summary Increase a card's usage counter
// @Description Sets the usage counter to the value in the body; only increases are accepted.
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Param request body StatisticsRequest true "New counter value"
// @Success 200 {object} model.UserCard
// @Failure 404 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /cards/{id}/statistics [patch]
func (h *CardHandler) Statistics(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cardID, err := pathID(c)
	if err != nil {
		return err
	}

	var req StatisticsRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	userCard, err := h.cardService.UpdateStatistics(c.Request().Context(), userID, cardID, req.UsageCounter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userCard)
}

// Share godoc
// @Summary Share a card with another user
// @Description Looks the target up by email. Registered users get the card added to their list; unknown addresses get an invitation email.
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Param request body ShareRequest true "Target email"
// @Success 200 {object} map[string]string "invitation sent"
// @Success 201 {object} map[string]string "card shared"
// @Failure 404 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /cards/{id}/share [post]
func (h *CardHandler) Share(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cardID, err := pathID(c)
	if err != nil {
		return err
	}

	var req ShareRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.cardService.Share(c.Request().Context(), userID, cardID, req.Email)
	if err != nil {
		return respondError(c, err)
	}

	if result.Invited {
		return c.JSON(http.StatusOK, map[string]string{
			"message": fmt.Sprintf("no user with email %s, an invitation has been sent", result.Email),
		})
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("card shared with %s", result.Email),
	})
}
