package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fruitstore/internal/metrics"
	"fruitstore/internal/model"
	"fruitstore/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// OrderRepos groups the repositories the order workflow touches.
type OrderRepos struct {
	Orders    repository.OrderRepository
	Fruits    repository.FruitRepository
	Stock     repository.StockHistoryRepository
	Payments  repository.PaymentRepository
	Customers repository.CustomerRepository
	Users     repository.UserRepository
}

// orderService implements OrderService.
type orderService struct {
	txr     repository.Transactor
	repos   OrderRepos
	metrics *metrics.Metrics
	logger  zerolog.Logger

	now         func() time.Time
	orderNumber func(time.Time) string
}

// NewOrderService creates a new order service.
func NewOrderService(
	txr repository.Transactor,
	repos OrderRepos,
	m *metrics.Metrics,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		txr:         txr,
		repos:       repos,
		metrics:     m,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
		orderNumber: newOrderNumber,
	}
}

// CreateOrder validates the request, then in one transaction locks the fruits, checks stock,
// writes the order, items, ledger entries and a pending payment.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		s.metrics.OrderFailed(errorCode(err))
		return nil, err
	}

	if err := s.checkParties(ctx, req); err != nil {
		s.metrics.OrderFailed(errorCode(err))
		return nil, err
	}

	fruitIDs := distinctFruitIDs(req.Items)

	var order *model.Order
	err := s.txr.WithTx(ctx, func(tx pgx.Tx) error {
		now := s.now().UTC()

		fruits, err := s.repos.Fruits.LockByIDs(ctx, tx, fruitIDs)
		if err != nil {
			return err
		}

		o := &model.Order{
			ID:            uuid.New(),
			OrderNumber:   s.orderNumber(now),
			CustomerID:    req.CustomerID,
			PaymentMethod: req.PaymentMethod,
			Status:        model.OrderStatusProcessing,
			UserID:        req.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		remaining := make(map[uuid.UUID]int, len(fruits))
		for id, f := range fruits {
			remaining[id] = f.Stock
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(req.Items))
		entries := make([]model.StockHistoryEntry, 0, len(req.Items))

		for _, line := range req.Items {
			f, ok := fruits[line.FruitID]
			if !ok {
				s.logger.Warn().Str("fruit_id", line.FruitID.String()).Msg("ordered fruit does not exist")
				return model.NewInsufficientStockError("")
			}
			if remaining[f.ID] < line.Quantity {
				s.logger.Warn().
					Str("fruit_id", f.ID.String()).
					Int("available", remaining[f.ID]).
					Int("requested", line.Quantity).
					Msg("insufficient stock")
				return model.NewInsufficientStockError(f.Name)
			}
			if line.Price != nil && !line.Price.Equal(f.Price) {
				s.logger.Warn().
					Str("fruit_id", f.ID.String()).
					Str("client_price", line.Price.String()).
					Str("price", f.Price.String()).
					Msg("client price does not match catalogue price")
				return model.NewPriceMismatchError(f.Name)
			}
			remaining[f.ID] -= line.Quantity

			subtotal := f.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)

			items = append(items, model.OrderItem{
				ID:        uuid.New(),
				OrderID:   o.ID,
				FruitID:   f.ID,
				FruitName: f.Name,
				Quantity:  line.Quantity,
				Price:     f.Price,
				Subtotal:  subtotal,
				CreatedAt: now,
			})
			entries = append(entries, model.StockHistoryEntry{
				ID:           uuid.New(),
				FruitID:      f.ID,
				Quantity:     -line.Quantity,
				MovementType: model.MovementOut,
				Description:  "Order " + o.OrderNumber,
				UserID:       req.UserID,
				CreatedAt:    now,
			})
		}
		if total.GreaterThan(model.MaxAmount) {
			return model.NewValidationError("Validation failed",
				map[string]string{"items": "order total must not exceed " + model.MaxAmount.StringFixed(model.MoneyScale)})
		}
		o.TotalAmount = total

		if err := s.repos.Orders.CreateOrder(ctx, tx, o); err != nil {
			return err
		}
		if err := s.repos.Orders.CreateOrderItems(ctx, tx, items); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := s.repos.Fruits.AdjustStock(ctx, tx, item.FruitID, -item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repos.Stock.Append(ctx, tx, entries); err != nil {
			return err
		}

		payment := &model.Payment{
			ID:          uuid.New(),
			OrderID:     o.ID,
			AmountPaid:  total,
			Status:      model.PaymentStatusPending,
			Method:      o.PaymentMethod,
			PaymentDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repos.Payments.Create(ctx, tx, payment); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		s.metrics.OrderFailed(errorCode(err))
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("customer_id", req.CustomerID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.OrderCreated()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("total", order.TotalAmount.String()).
		Int("item_count", len(req.Items)).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order with its items, payments and customer.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.repos.Orders.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	items, err := s.repos.Orders.GetItems(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	payments, err := s.repos.Payments.ListByOrder(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order payments: %w", err)
	}

	customer, err := s.repos.Customers.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order customer: %w", err)
	}

	return &model.OrderDetail{
		Order:    *order,
		Items:    items,
		Payments: payments,
		Customer: customer,
	}, nil
}

// List returns orders matching the filter, newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.NewValidationError("Validation failed", map[string]string{"status": "must be one of: PROCESSING, COMPLETED, CANCELLED"})
	}

	orders, err := s.repos.Orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrder applies a status and/or payment method change.
func (s *orderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var (
		order     *model.Order
		cancelled bool
	)
	err := s.txr.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.repos.Orders.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return model.ErrOrderNotFound
		}

		cancelled = false
		if req.Status != nil && *req.Status == model.OrderStatusCancelled {
			if err := s.cancelLocked(ctx, tx, o); err != nil {
				return err
			}
			cancelled = true
		} else if req.Status != nil && *req.Status != o.Status {
			if !o.Status.CanTransitionTo(*req.Status) {
				return model.NewOrderTransitionError(o.Status, *req.Status)
			}
			o.Status = *req.Status
		}

		if req.PaymentMethod != nil {
			if o.Status == model.OrderStatusCancelled && !cancelled {
				return model.ErrOrderCancelled
			}
			o.PaymentMethod = *req.PaymentMethod
		}

		o.UpdatedAt = s.now().UTC()
		if err := s.repos.Orders.Update(ctx, tx, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if cancelled {
		s.metrics.OrderCancelled()
	}
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Str("payment_method", string(order.PaymentMethod)).
		Msg("order updated")

	return order, nil
}

// CancelOrder reverses a non-cancelled order in one transaction.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.txr.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.repos.Orders.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return model.ErrOrderNotFound
		}

		if err := s.cancelLocked(ctx, tx, o); err != nil {
			return err
		}

		o.UpdatedAt = s.now().UTC()
		if err := s.repos.Orders.Update(ctx, tx, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("order cannot be cancelled")
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to cancel order")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.metrics.OrderCancelled()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order cancelled")

	return order, nil
}

// cancelLocked restores stock for every item of the locked order, writes the reversing
// ledger entries and fails the order's payments. The caller persists o.
func (s *orderService) cancelLocked(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	switch o.Status {
	case model.OrderStatusCancelled:
		return model.ErrOrderAlreadyCancelled
	case model.OrderStatusCompleted:
		// Permitted, but it reverses stock for goods that may already have shipped.
		s.logger.Warn().
			Str("order_id", o.ID.String()).
			Str("order_number", o.OrderNumber).
			Msg("cancelling a completed order")
	}

	items, err := s.repos.Orders.GetItems(ctx, tx, o.ID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.FruitID)
	}
	if _, err := s.repos.Fruits.LockByIDs(ctx, tx, uniqueIDs(ids)); err != nil {
		return err
	}

	now := s.now().UTC()
	entries := make([]model.StockHistoryEntry, 0, len(items))
	for _, item := range items {
		if _, err := s.repos.Fruits.AdjustStock(ctx, tx, item.FruitID, item.Quantity); err != nil {
			return err
		}
		entries = append(entries, model.StockHistoryEntry{
			ID:           uuid.New(),
			FruitID:      item.FruitID,
			Quantity:     item.Quantity,
			MovementType: model.MovementIn,
			Description:  fmt.Sprintf("Order %s cancelled", o.OrderNumber),
			CreatedAt:    now,
		})
	}
	if err := s.repos.Stock.Append(ctx, tx, entries); err != nil {
		return err
	}

	failed, err := s.repos.Payments.FailByOrder(ctx, tx, o.ID)
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("order_id", o.ID.String()).
		Int("items_restored", len(items)).
		Int64("payments_failed", failed).
		Msg("order reversed")

	o.Status = model.OrderStatusCancelled
	return nil
}

func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("fruit_id", item.FruitID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
		if item.Quantity > model.MaxStock {
			return model.NewValidationError("Validation failed",
				map[string]string{fmt.Sprintf("items[%d].quantity", i): "must not exceed available stock"})
		}
		if item.Price != nil {
			if !item.Price.IsPositive() {
				return model.ErrInvalidPrice
			}
			if err := checkMoney(fmt.Sprintf("items[%d].price", i), *item.Price, model.MaxPrice); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkParties verifies the customer and the optional creator exist.
func (s *orderService) checkParties(ctx context.Context, req *model.CreateOrderRequest) error {
	customer, err := s.repos.Customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return model.ErrCustomerNotFound
	}

	if req.UserID != nil {
		user, err := s.repos.Users.GetByID(ctx, *req.UserID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return model.ErrUserNotFound
		}
	}
	return nil
}

func distinctFruitIDs(items []model.OrderItemRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.FruitID)
	}
	return uniqueIDs(ids)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func isDomainError(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de)
}

// errorCode returns the domain code of err, or INTERNAL_ERROR.
func errorCode(err error) string {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return model.ErrCodeInternalError
}
