package main

import (
	"log"
	"net/http"
	"os"

	_ "cardwallet/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"cardwallet/internal/auth"
	"cardwallet/internal/cache"
	"cardwallet/internal/config"
	"cardwallet/internal/db"
	"cardwallet/internal/handler"
	"cardwallet/internal/mailer"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
	"cardwallet/internal/router"
	"cardwallet/internal/service"
)

// @title Card Wallet API
// @version 1.0
// @description Loyalty-card wallet API: cards, shops, categories, sharing and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.UserCard{},
			&model.Card{},
			&model.Shop{},
			&model.Group{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Shop{},
		&model.Card{},
		&model.UserCard{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.AMQPURL != "" {
		amqpMailer, err := mailer.New(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("mailer init: %v", err)
		}
		defer amqpMailer.Close()
		mail = amqpMailer
	} else {
		log.Println("AMQP_URL not set, outbound email will only be logged")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	groupRepo := repository.NewGroupRepository(gormDB)
	shopRepo := repository.NewShopRepository(gormDB)
	cardRepo := repository.NewCardRepository(gormDB)
	userCardRepo := repository.NewUserCardRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	tokenSource := auth.NewTokenSource(cfg.ActivationSecret, cfg.ActivationMaxAge)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, tokenSource, mail, cfg.ActivationURL)
	userService := service.NewUserService(userRepo)
	cardService := service.NewCardService(cardRepo, userCardRepo, shopRepo, groupRepo, userRepo, mail)
	shopService := service.NewShopService(shopRepo, groupRepo, userCardRepo, cacheClient)
	groupService := service.NewGroupService(groupRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	cardHandler := handler.NewCardHandler(cardService)
	shopHandler := handler.NewShopHandler(shopService)
	groupHandler := handler.NewGroupHandler(groupService)

	// Register routes
	router.Register(
		e,
		cfg,
		tokenStore,
		authHandler,
		userHandler,
		cardHandler,
		shopHandler,
		groupHandler,
	)

	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		swaggerURL = "http://" + cfg.SwaggerHost + "/swagger/index.html"
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
