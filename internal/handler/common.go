package handler

import (
	"net/http"
	"strconv"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"cardwallet/internal/errors"
)

// currentUserID extracts the authenticated user's ID from the JWT middleware
// context.
func currentUserID(c echo.Context) (uint, error) {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return uint(id), nil
}

// pathID parses the :id route parameter. The error carries a plain string so
// the router's error handler can shape it into the envelope.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "invalid id")
	}
	return uint(id), nil
}

// respondError maps a domain error to the uniform envelope.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToEnvelope())
}

// bindAndValidate binds the request body and runs DTO-level validation,
// responding with a 400 envelope on failure.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, errors.NewEnvelope(http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"invalid request body"},
		}))
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, errors.NewEnvelope(http.StatusBadRequest, map[string][]string{
			"non_field_errors": {err.Error()},
		}))
	}
	return true, nil
}
