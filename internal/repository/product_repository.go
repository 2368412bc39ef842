package repository

import (
	"context"
	"fmt"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, description, category, cost_price, selling_price,
	stock_available, units_sold, created_by, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.CostPrice,
		&p.SellingPrice,
		&p.StockAvailable,
		&p.UnitsSold,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, category, cost_price, selling_price,
			stock_available, units_sold, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.CostPrice,
		product.SellingPrice,
		product.StockAvailable,
		product.UnitsSold,
		product.CreatedBy,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Msg("product created successfully")

	return nil
}

// GetForOwner retrieves a product by ID, scoped to its owner.
func (r *productRepository) GetForOwner(ctx context.Context, owner, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND created_by = $2
	`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetAllForOwner retrieves a seller's products with pagination support.
func (r *productRepository) GetAllForOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE created_by = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, owner, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update persists all mutable product fields.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, cost_price = $4,
			selling_price = $5, stock_available = $6, updated_at = $7
		WHERE id = $8 AND created_by = $9
	`

	tag, err := r.pool.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Category,
		product.CostPrice,
		product.SellingPrice,
		product.StockAvailable,
		product.UpdatedAt,
		product.ID,
		product.CreatedBy,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product scoped to its owner.
func (r *productRepository) Delete(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	query := `DELETE FROM products WHERE id = $1 AND created_by = $2`

	tag, err := r.pool.Exec(ctx, query, id, owner)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// LockForOwner retrieves a product by ID within the provided transaction,
// taking a row lock. Two concurrent order creations touching the same product
// serialise here, so both cannot pass the stock check.
func (r *productRepository) LockForOwner(ctx context.Context, tx pgx.Tx, owner, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND created_by = $2
		FOR UPDATE
	`

	p, err := scanProduct(tx.QueryRow(ctx, query, id, owner))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found for lock")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to lock product")
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return p, nil
}

// UpdateStock persists the stock counters within the provided transaction.
func (r *productRepository) UpdateStock(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	query := `
		UPDATE products
		SET stock_available = $1, units_sold = $2, updated_at = now()
		WHERE id = $3
	`

	_, err := tx.Exec(ctx, query, product.StockAvailable, product.UnitsSold, product.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", product.ID.String()).
			Msg("failed to update product stock")
		return fmt.Errorf("failed to update product stock: %w", err)
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Int("stock_available", product.StockAvailable).
		Int("units_sold", product.UnitsSold).
		Msg("product stock updated")

	return nil
}
