package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cardwallet/internal/service"
)

// ShopHandler handles shop endpoints.
type ShopHandler struct {
	shopService service.ShopService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shopService service.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

// ShopPatchRequest represents a partial shop update: name and/or categories.
type ShopPatchRequest struct {
	Name  *string `json:"name"`
	Group *[]uint `json:"group"`
}

// List godoc
// @Summary List verified shops
// @Tags shops
// @Produce json
// @Success 200 {array} model.Shop
// @Router /shops [get]
func (h *ShopHandler) List(c echo.Context) error {
	shops, err := h.shopService.ListVerified(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, shops)
}

// Get godoc
// @Summary Get one verified shop
// @Tags shops
// @Produce json
// @Param id path int true "Shop ID"
// @Success 200 {object} model.Shop
// @Failure 404 {object} errors.Envelope
// @Router /shops/{id} [get]
func (h *ShopHandler) Get(c echo.Context) error {
	shopID, err := pathID(c)
	if err != nil {
		return err
	}

	shop, err := h.shopService.GetVerified(c.Request().Context(), shopID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

// Update godoc
// @Summary Edit an unverified shop
// @Description Edits name/categories of a shop the requester created, i.e. one an owned card references. Verified shops are immutable.
// @Tags shops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shop ID"
// @Param request body ShopPatchRequest true "Fields to change"
// @Success 200 {object} model.Shop
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /shops/{id} [patch]
func (h *ShopHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	shopID, err := pathID(c)
	if err != nil {
		return err
	}

	var req ShopPatchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	shop, err := h.shopService.Update(c.Request().Context(), userID, shopID, service.ShopUpdate{
		Name:     req.Name,
		GroupIDs: req.Group,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}
