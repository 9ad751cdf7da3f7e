package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cardwallet/internal/service"
)

// GroupHandler handles shop category endpoints.
type GroupHandler struct {
	groupService service.GroupService
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// List godoc
// @Summary List shop categories
// @Tags groups
// @Produce json
// @Success 200 {array} model.Group
// @Router /groups [get]
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.groupService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

// Get godoc
// @Summary Get one shop category
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} model.Group
// @Failure 404 {object} errors.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c echo.Context) error {
	groupID, err := pathID(c)
	if err != nil {
		return err
	}

	group, err := h.groupService.Get(c.Request().Context(), groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, group)
}
