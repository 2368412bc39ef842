package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"orderdesk/internal/database"
	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the full schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedUser inserts a seller account and returns its ID.
func SeedUser(t *testing.T, pool *pgxpool.Pool, username string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, password_hash, active)
		 VALUES ($1, $2, $3, $4, TRUE)`,
		id, username, username+"@example.com", "$2a$10$notacheckablehash")
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}

	return id
}

// SeedProduct inserts a product owned by the given seller and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, owner uuid.UUID, name, sellingPrice string, stock int) *model.Product {
	t.Helper()

	now := time.Now()
	p := &model.Product{
		ID:             uuid.New(),
		Name:           name,
		Description:    "integration test product",
		Category:       "Test",
		CostPrice:      decimal.RequireFromString(sellingPrice).Div(decimal.NewFromInt(2)).Round(2),
		SellingPrice:   decimal.RequireFromString(sellingPrice),
		StockAvailable: stock,
		CreatedBy:      owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, name, description, category, cost_price, selling_price,
			stock_available, units_sold, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Description, p.Category, p.CostPrice, p.SellingPrice,
		p.StockAvailable, p.UnitsSold, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}

	return p
}

// CleanupDB removes all data from the test tables, keeping the schema.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{"order_items", "orders", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
