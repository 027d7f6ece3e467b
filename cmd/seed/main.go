package main

import (
	"context"
	"log"

	"workshop/internal/auth"
	"workshop/internal/config"
	"workshop/internal/db"
	"workshop/internal/events"
	"workshop/internal/ledger"
	"workshop/internal/model"
	"workshop/internal/repository"
	"workshop/internal/seed"
	"workshop/internal/service"
)

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(gormDB)
	log.Println("Connected to database")

	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	store := repository.NewStore(gormDB)
	workshop := ledger.New(store, events.LogPublisher{})
	users := service.NewUserService(store.Users(), auth.NewTokenStore(nil), cfg.BcryptCost)
	messages := service.NewMessageService(store)

	seeded, err := seed.New(store, workshop, users, messages).Run(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	if !seeded {
		log.Println("Database already has users, nothing to seed")
		return
	}
	log.Println("Seed completed successfully!")
}
