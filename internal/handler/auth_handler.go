package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"cardwallet/internal/service"
)

// AuthHandler handles authentication and email-flow endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ActivationRequest carries the uid/token pair from the activation email.
type ActivationRequest struct {
	UID   string `json:"uid" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// PreCheckRequest carries an email/password pair for pre-registration checks.
type PreCheckRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest asks for a password-reset email.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	PhoneLastDigits string `json:"phone_last_digits" validate:"required,len=4,numeric"`
}

// ResetPasswordConfirmRequest carries the uid/token pair from the reset email
// plus the new password.
type ResetPasswordConfirmRequest struct {
	UID         string `json:"uid" validate:"required"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         interface{} `json:"user,omitempty"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name, req.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "user registered, confirmation email sent",
		"user":    user,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	accessToken, refreshToken, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	accessToken := bearerToken(c)
	if err := h.authService.Logout(c.Request().Context(), accessToken, req.RefreshToken); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Activate godoc
// @Summary Confirm the authenticated user's email
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param request body ActivationRequest true "uid and token from the activation email"
// @Success 204
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Router /auth/activation [post]
func (h *AuthHandler) Activate(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ActivationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.authService.Activate(c.Request().Context(), userID, req.UID, req.Token); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResendActivation godoc
// @Summary Resend the confirmation email
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 400 {object} errors.Envelope
// @Router /auth/resend_activation [post]
func (h *AuthHandler) ResendActivation(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.authService.ResendActivation(c.Request().Context(), userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PreCheck godoc
// @Summary Pre-validate email and password
// @Tags auth
// @Accept json
// @Param request body PreCheckRequest true "Email and password"
// @Success 204
// @Failure 400 {object} errors.Envelope
// @Router /auth/pre_check [post]
func (h *AuthHandler) PreCheck(c echo.Context) error {
	var req PreCheckRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.authService.PreCheck(req.Email, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword godoc
// @Summary Request a password-reset email
// @Tags auth
// @Accept json
// @Param request body ResetPasswordRequest true "Email and last four phone digits"
// @Success 204
// @Failure 400 {object} errors.Envelope
// @Router /auth/reset_password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.PhoneLastDigits); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPasswordConfirm godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Param request body ResetPasswordConfirmRequest true "uid and token from the reset email plus the new password"
// @Success 204
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Router /auth/reset_password_confirm [post]
func (h *AuthHandler) ResetPasswordConfirm(c echo.Context) error {
	var req ResetPasswordConfirmRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.authService.ResetPasswordConfirm(c.Request().Context(), req.UID, req.Token, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bearerToken returns the raw token from the Authorization header, or "".
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
