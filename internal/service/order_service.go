package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderNumberAttempts bounds the collision retry loop for order numbers. The
// unique index on orders.order_number remains the backstop for a lost race.
const orderNumberAttempts = 5

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder atomically creates an order against live inventory. Product rows
// are locked for the duration of the transaction, so two concurrent orders
// cannot both pass the stock check and drive stock negative. Any failure rolls
// back every mutation made in this call.
func (s *orderService) CreateOrder(ctx context.Context, caller uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	orderNumber, err := s.generateOrderNumber(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate order number")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     orderNumber,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Status:          model.StatusPending,
		TotalAmount:     decimal.Zero,
		Notes:           req.Notes,
		CreatedBy:       caller,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.Insert(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	total := decimal.Zero
	for i, itemReq := range req.Items {
		var product *model.Product
		product, err = s.productRepo.LockForOwner(ctx, tx, caller, itemReq.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if product == nil {
			s.logger.Warn().
				Str("product_id", itemReq.ProductID.String()).
				Msg("ordered product not found")
			err = model.ErrProductNotFound
			return nil, err
		}

		if product.StockAvailable < itemReq.Quantity {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Int("requested", itemReq.Quantity).
				Int("available", product.StockAvailable).
				Msg("insufficient stock")
			err = &model.InsufficientStockError{
				ProductID:   product.ID.String(),
				ProductName: product.Name,
				Available:   product.StockAvailable,
				Requested:   itemReq.Quantity,
			}
			return nil, err
		}

		item := model.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductCategory: product.Category,
			LineNo:          i + 1,
			Quantity:        itemReq.Quantity,
			UnitPrice:       product.SellingPrice,
			TotalPrice:      product.SellingPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))),
			CreatedAt:       now,
		}

		if err = s.orderRepo.InsertItem(ctx, tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create order items: %w", err)
		}

		product.StockAvailable -= itemReq.Quantity
		product.UnitsSold += itemReq.Quantity
		if err = s.productRepo.UpdateStock(ctx, tx, product); err != nil {
			return nil, fmt.Errorf("failed to update product stock: %w", err)
		}

		total = total.Add(item.TotalPrice)
		order.Items = append(order.Items, item)
	}

	if err = s.orderRepo.SetTotal(ctx, tx, order.ID, total); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.TotalAmount = total

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Str("total_amount", order.TotalAmount.String()).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, caller, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetForOwner(ctx, caller, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// List retrieves the caller's orders, newest first, optionally filtered.
func (s *orderService) List(ctx context.Context, caller uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	orders, err := s.orderRepo.ListForOwner(ctx, caller, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// Update applies a whitelisted partial update to an order. Status transitions
// are not restricted: any status may follow any other.
func (s *orderService) Update(ctx context.Context, caller, id uuid.UUID, patch *model.OrderPatch) (*model.Order, error) {
	if patch == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order patch is required")
	}

	if patch.Status != nil && !patch.Status.Valid() {
		s.logger.Warn().Str("status", string(*patch.Status)).Msg("unknown order status in patch")
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orderRepo.GetForOwner(ctx, caller, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to load order for update")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.Notes != nil {
		order.Notes = *patch.Notes
	}
	if patch.CustomerName != nil {
		order.CustomerName = *patch.CustomerName
	}
	if patch.CustomerEmail != nil {
		order.CustomerEmail = *patch.CustomerEmail
	}
	if patch.CustomerPhone != nil {
		order.CustomerPhone = *patch.CustomerPhone
	}
	if patch.CustomerAddress != nil {
		order.CustomerAddress = *patch.CustomerAddress
	}
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if err == model.ErrOrderNotFound {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Msg("order updated")

	return order, nil
}

// Delete removes a pending order and restores the stock it consumed, as if
// the order had never existed from the products' perspective.
func (s *orderService) Delete(ctx context.Context, caller, id uuid.UUID) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var order *model.Order
	order, err = s.orderRepo.LockForOwner(ctx, tx, caller, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return err
	}

	if order.Status != model.StatusPending {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Msg("deletion rejected for non-pending order")
		err = model.ErrOrderNotPending
		return err
	}

	// Exact inverse of the stock mutation performed at creation.
	for _, item := range order.Items {
		var product *model.Product
		product, err = s.productRepo.LockForOwner(ctx, tx, order.CreatedBy, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		if product == nil {
			err = fmt.Errorf("product %s missing during order reversal", item.ProductID)
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("order reversal failed")
			return err
		}

		product.StockAvailable += item.Quantity
		product.UnitsSold -= item.Quantity
		if err = s.productRepo.UpdateStock(ctx, tx, product); err != nil {
			return fmt.Errorf("failed to restore product stock: %w", err)
		}
	}

	if err = s.orderRepo.Delete(ctx, tx, order.ID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Msg("order deleted and stock restored")

	return nil
}

// Stats summarises the caller's orders per status with total revenue.
func (s *orderService) Stats(ctx context.Context, caller uuid.UUID) (*model.OrderStats, error) {
	stats, err := s.orderRepo.StatsForOwner(ctx, caller)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to aggregate order stats")
		return nil, fmt.Errorf("failed to aggregate order stats: %w", err)
	}

	return stats, nil
}

// generateOrderNumber produces a unique human-readable order number of the
// form ORD-YYYYMMDD-XXXX, retrying on collision.
func (s *orderService) generateOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := fmt.Sprintf("ORD-%s-%04d",
			time.Now().UTC().Format("20060102"),
			rand.IntN(9000)+1000,
		)

		exists, err := s.orderRepo.OrderNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}

		s.logger.Warn().
			Str("order_number", number).
			Int("attempt", attempt+1).
			Msg("order number collision, retrying")
	}

	return "", fmt.Errorf("no unique order number after %d attempts", orderNumberAttempts)
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Order request is required")
	}

	if req.CustomerName == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Customer name is required")
	}
	if req.CustomerEmail == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Customer email is required")
	}
	if req.CustomerAddress == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Customer address is required")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.NewDomainError(model.ErrCodeValidation,
				fmt.Sprintf("Item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}

		if seen[item.ProductID] {
			return model.ErrDuplicateProduct
		}
		seen[item.ProductID] = true
	}

	return nil
}
