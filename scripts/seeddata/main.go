// Command seeddata provisions a development seller account and a small
// product catalogue. Run against a local database:
//
//	go run ./scripts/seeddata
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.Background()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	users := repository.NewUserRepository(pool, logger)
	products := repository.NewProductRepository(pool, logger)

	username := getEnv("SEED_USERNAME", "demo-seller")
	password := getEnv("SEED_PASSWORD", "demo-password")

	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user = &model.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: string(hash),
			Active:       true,
			CreatedAt:    time.Now(),
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", user.Username, user.ID)
	} else {
		fmt.Printf("User %s already exists (%s)\n", user.Username, user.ID)
	}

	samples := []struct {
		name     string
		category string
		cost     string
		selling  string
		stock    int
	}{
		{"Wireless Mouse", "Electronics", "8.50", "19.99", 120},
		{"Mechanical Keyboard", "Electronics", "35.00", "79.99", 45},
		{"Desk Lamp", "Home", "6.00", "14.50", 200},
		{"Notebook A5", "Stationery", "1.20", "3.99", 500},
		{"Water Bottle 750ml", "Home", "2.80", "9.99", 150},
	}

	now := time.Now()
	for _, sp := range samples {
		product := &model.Product{
			ID:             uuid.New(),
			Name:           sp.name,
			Category:       sp.category,
			CostPrice:      decimal.RequireFromString(sp.cost),
			SellingPrice:   decimal.RequireFromString(sp.selling),
			StockAvailable: sp.stock,
			CreatedBy:      user.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		fmt.Printf("Created product %s (%s)\n", product.Name, product.ID)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
