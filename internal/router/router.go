package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"cardwallet/internal/auth"
	"cardwallet/internal/config"
	"cardwallet/internal/errors"
	"cardwallet/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	cardHandler *handler.CardHandler,
	shopHandler *handler.ShopHandler,
	groupHandler *handler.GroupHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = envelopeErrorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/pre_check", authHandler.PreCheck)
	api.POST("/auth/reset_password", authHandler.ResetPassword)
	api.POST("/auth/reset_password_confirm", authHandler.ResetPasswordConfirm)

	api.GET("/shops", shopHandler.List)
	api.GET("/shops/:id", shopHandler.Get)
	api.GET("/groups", groupHandler.List)
	api.GET("/groups/:id", groupHandler.Get)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}), blacklistGuard(tokenStore))

	secured.POST("/auth/activation", authHandler.Activate)
	secured.POST("/auth/resend_activation", authHandler.ResendActivation)

	secured.GET("/users/me", userHandler.Me)
	secured.PATCH("/users/me", userHandler.UpdateMe)

	secured.GET("/cards", cardHandler.List)
	secured.POST("/cards", cardHandler.Create)
	secured.POST("/cards/new-shop", cardHandler.CreateWithShop)
	secured.GET("/cards/favorites", cardHandler.Favorites)
	secured.GET("/cards/:id", cardHandler.Get)
	secured.PATCH("/cards/:id", cardHandler.Update)
	secured.DELETE("/cards/:id", cardHandler.Delete)
	secured.POST("/cards/:id/favorite", cardHandler.Favorite)
	secured.DELETE("/cards/:id/favorite", cardHandler.Unfavorite)
	secured.PATCH("/cards/:id/statistics", cardHandler.Statistics)
	secured.POST("/cards/:id/share", cardHandler.Share)

	secured.PATCH("/shops/:id", shopHandler.Update)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// blacklistGuard rejects access tokens revoked by logout. It runs after the
// JWT middleware, so a missing or malformed token never reaches it.
func blacklistGuard(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwtv5.Token)
			if !ok {
				return next(c)
			}
			claims, ok := token.Claims.(jwtv5.MapClaims)
			if !ok {
				return next(c)
			}
			jti, _ := claims["jti"].(string)
			if jti == "" {
				return next(c)
			}
			blacklisted, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), jti)
			if err == nil && blacklisted {
				return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
			}
			return next(c)
		}
	}
}

// envelopeErrorHandler shapes framework-level errors (routing, auth
// middleware, binding) into the uniform error envelope.
func envelopeErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := map[string][]string{}

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			detail["non_field_errors"] = []string{msg}
		}
	}

	if jsonErr := c.JSON(status, errors.NewEnvelope(status, detail)); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
