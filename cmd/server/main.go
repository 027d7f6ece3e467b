package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"workshop/docs"
	"workshop/internal/auth"
	"workshop/internal/cache"
	"workshop/internal/config"
	"workshop/internal/db"
	"workshop/internal/events"
	"workshop/internal/handler"
	"workshop/internal/ledger"
	"workshop/internal/model"
	"workshop/internal/repository"
	"workshop/internal/router"
	"workshop/internal/seed"
	"workshop/internal/service"
)

// @title Workshop API
// @version 1.0
// @description Auto-repair shop backend: customers, vehicles, repair orders, calendar, inventory, invoices and messaging.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := model.DropAll(gormDB); err != nil {
			log.Printf("Warning: failed to drop tables: %v", err)
		}
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient == nil {
		log.Println("REDIS_ADDR not set: token revocation, user cache and rate limiting are disabled")
	}

	var broker events.Publisher = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		broker = events.NewAMQPPublisher(cfg.AMQPURL)
	}
	dispatcher := events.NewDispatcher(broker)

	store := repository.NewStore(gormDB)
	workshop := ledger.New(store, dispatcher)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(store.Users(), store.PasswordResets(), jwtService, tokenStore, dispatcher,
		service.AuthOptions{BcryptCost: cfg.BcryptCost, ResetTokenTTL: cfg.ResetTokenTTL})
	userService := service.NewUserService(store.Users(), tokenStore, cfg.BcryptCost)
	messageService := service.NewMessageService(store)
	notificationService := service.NewNotificationService(store.Notifications(), store.Users())

	if cfg.SeedDemo {
		if _, err := seed.New(store, workshop, userService, messageService).Run(context.Background()); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	e := echo.New()
	router.Register(e, cfg, router.Deps{
		Store:       store,
		JWT:         jwtService,
		AuthService: authService,
		Cache:       cacheClient,
	}, router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Profile:       handler.NewProfileHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Customers:     handler.NewCustomerHandler(workshop),
		Vehicles:      handler.NewVehicleHandler(workshop),
		Orders:        handler.NewOrderHandler(workshop),
		Appointments:  handler.NewAppointmentHandler(workshop),
		Parts:         handler.NewPartHandler(workshop),
		Invoices:      handler.NewInvoiceHandler(workshop),
		Messages:      handler.NewMessageHandler(messageService),
		Notifications: handler.NewNotificationHandler(notificationService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	} else {
		docs.SwaggerInfo.Host = "localhost:" + cfg.ServerPort
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	dispatcher.Close()
	if err := cacheClient.Close(); err != nil {
		log.Printf("cache close: %v", err)
	}
	if err := db.Close(gormDB); err != nil {
		log.Printf("database close: %v", err)
	}
}
