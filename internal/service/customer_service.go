package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fruitstore/internal/model"
	"fruitstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const recentOrdersSize = 5

// customerService implements CustomerService.
type customerService struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	logger       zerolog.Logger

	now func() time.Time
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo repository.CustomerRepository, orderRepo repository.OrderRepository, logger zerolog.Logger) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		logger:       logger.With().Str("service", "customer").Logger(),
		now:          time.Now,
	}
}

func (s *customerService) Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	existing, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check customer email: %w", err)
	}
	if existing != nil {
		return nil, model.ErrDuplicateCustomerEmail
	}

	now := s.now().UTC()
	customer := &model.Customer{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info().Str("customer_id", customer.ID.String()).Msg("customer created")
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCustomerRequest) (*model.Customer, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	customer, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != customer.Email {
			existing, err := s.customerRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check customer email: %w", err)
			}
			if existing != nil && existing.ID != id {
				return nil, model.ErrDuplicateCustomerEmail
			}
			customer.Email = email
		}
	}
	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	customer.UpdatedAt = s.now().UTC()

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

// Delete removes a customer without orders.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	hasOrders, err := s.customerRepo.HasOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check customer orders: %w", err)
	}
	if hasOrders {
		return model.ErrCustomerHasOrders
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info().Str("customer_id", id.String()).Msg("customer deleted")
	return nil
}

// GetByID returns the customer with order statistics and the latest orders.
func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerDetail, error) {
	customer, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.customerRepo.Stats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}

	orders, err := s.orderRepo.List(ctx, model.OrderFilter{CustomerID: &id, Limit: recentOrdersSize})
	if err != nil {
		return nil, fmt.Errorf("failed to get customer orders: %w", err)
	}

	return &model.CustomerDetail{
		Customer:     *customer,
		Stats:        *stats,
		RecentOrders: orders,
	}, nil
}

func (s *customerService) Search(ctx context.Context, filter model.CustomerFilter) ([]model.Customer, int, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	filter.Query = strings.TrimSpace(filter.Query)

	customers, total, err := s.customerRepo.Search(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, model.ErrCustomerNotFound
	}
	return customer, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
