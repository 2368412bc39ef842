package service

import (
	"context"
	"fmt"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// Create adds a product to the caller's catalogue.
func (s *productService) Create(ctx context.Context, caller uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &model.Product{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		CostPrice:      req.CostPrice,
		SellingPrice:   req.SellingPrice,
		StockAvailable: req.StockAvailable,
		UnitsSold:      0,
		CreatedBy:      caller,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// GetAll retrieves the caller's products with pagination.
func (s *productService) GetAll(ctx context.Context, caller uuid.UUID, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.GetAllForOwner(ctx, caller, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve products")
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, caller, id uuid.UUID) (*model.Product, error) {
	product, err := s.repo.GetForOwner(ctx, caller, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to retrieve product")
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Update applies a partial update to a product. Stock adjustments made here
// set the absolute level; order transactions are the only place stock is
// decremented.
func (s *productService) Update(ctx context.Context, caller, id uuid.UUID, patch *model.ProductPatch) (*model.Product, error) {
	if patch == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Product patch is required")
	}

	product, err := s.repo.GetForOwner(ctx, caller, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to load product for update")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.CostPrice != nil {
		product.CostPrice = *patch.CostPrice
	}
	if patch.SellingPrice != nil {
		product.SellingPrice = *patch.SellingPrice
	}
	if patch.StockAvailable != nil {
		if *patch.StockAvailable < 0 {
			return nil, model.NewDomainError(model.ErrCodeValidation, "Stock cannot be negative")
		}
		product.StockAvailable = *patch.StockAvailable
	}
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		if err == model.ErrProductNotFound {
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product from the caller's catalogue.
func (s *productService) Delete(ctx context.Context, caller, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, caller, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// validateProductRequest validates the product creation payload.
func validateProductRequest(req *model.ProductRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Product request is required")
	}
	if req.Name == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Product name is required")
	}
	if req.Category == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Product category is required")
	}
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return model.NewDomainError(model.ErrCodeValidation, "Prices cannot be negative")
	}
	if req.StockAvailable < 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Stock cannot be negative")
	}
	return nil
}
