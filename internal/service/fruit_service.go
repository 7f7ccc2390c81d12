package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fruitstore/internal/blob"
	"fruitstore/internal/model"
	"fruitstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultFruitPageSize = 12
	recentHistorySize    = 10
)

// fruitService implements FruitService.
type fruitService struct {
	fruitRepo      repository.FruitRepository
	stockRepo      repository.StockHistoryRepository
	store          blob.Store
	maxUploadBytes int64
	logger         zerolog.Logger

	now func() time.Time
}

// NewFruitService creates a new fruit service.
func NewFruitService(
	fruitRepo repository.FruitRepository,
	stockRepo repository.StockHistoryRepository,
	store blob.Store,
	maxUploadBytes int64,
	logger zerolog.Logger,
) FruitService {
	return &fruitService{
		fruitRepo:      fruitRepo,
		stockRepo:      stockRepo,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("service", "fruit").Logger(),
		now:            time.Now,
	}
}

// Create adds a fruit. Its current stock becomes the ledger's initial stock.
func (s *fruitService) Create(ctx context.Context, req *model.CreateFruitRequest) (*model.Fruit, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Price.IsPositive() {
		return nil, model.ErrInvalidPrice
	}
	if err := checkMoney("price", req.Price, model.MaxPrice); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	fruit := &model.Fruit{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		InitialStock: req.Stock,
		ImageURL:     req.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.fruitRepo.Create(ctx, fruit); err != nil {
		return nil, fmt.Errorf("failed to create fruit: %w", err)
	}

	s.logger.Info().
		Str("fruit_id", fruit.ID.String()).
		Str("name", fruit.Name).
		Int("stock", fruit.Stock).
		Msg("fruit created")

	return fruit, nil
}

func (s *fruitService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateFruitRequest) (*model.Fruit, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	fruit, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		fruit.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fruit.Description = req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, model.ErrInvalidPrice
		}
		if err := checkMoney("price", *req.Price, model.MaxPrice); err != nil {
			return nil, err
		}
		fruit.Price = *req.Price
	}
	if req.ImageURL != nil {
		fruit.ImageURL = req.ImageURL
	}
	fruit.UpdatedAt = s.now().UTC()

	if err := s.fruitRepo.Update(ctx, fruit); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update fruit: %w", err)
	}

	return fruit, nil
}

// Delete removes a fruit that no order references.
func (s *fruitService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	used, err := s.fruitRepo.HasOrderItems(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check fruit usage: %w", err)
	}
	if used {
		s.logger.Warn().Str("fruit_id", id.String()).Msg("refusing to delete ordered fruit")
		return model.ErrFruitInUse
	}

	if err := s.fruitRepo.Delete(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete fruit: %w", err)
	}

	s.logger.Info().Str("fruit_id", id.String()).Msg("fruit deleted")
	return nil
}

// GetByID returns the fruit with its most recent stock movements.
func (s *fruitService) GetByID(ctx context.Context, id uuid.UUID) (*model.FruitDetail, error) {
	fruit, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.stockRepo.ListByFruit(ctx, id, recentHistorySize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock history: %w", err)
	}

	return &model.FruitDetail{Fruit: *fruit, RecentHistory: history}, nil
}

func (s *fruitService) Search(ctx context.Context, filter model.FruitFilter) (*model.FruitPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultFruitPageSize
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	switch filter.SortBy {
	case model.FruitSortName, model.FruitSortPrice, model.FruitSortStock, model.FruitSortCreatedAt:
	case "":
		filter.SortBy = model.FruitSortCreatedAt
		filter.SortDesc = true
	default:
		return nil, model.NewValidationError("Validation failed", map[string]string{"sortBy": "must be one of: name, price, stock, createdAt"})
	}

	fruits, total, err := s.fruitRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search fruits: %w", err)
	}

	return &model.FruitPage{
		Items:      fruits,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// StockHistory returns a page of ledger entries and checks the fruit's balance.
func (s *fruitService) StockHistory(ctx context.Context, id uuid.UUID, limit, offset int) (*model.StockHistoryPage, error) {
	limit, offset = normalizePage(limit, offset)

	balance, err := s.stockRepo.Balance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger balance: %w", err)
	}
	if balance == nil {
		return nil, model.ErrFruitNotFound
	}

	entries, err := s.stockRepo.ListByFruit(ctx, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock history: %w", err)
	}

	if !balance.Balanced() {
		s.logger.Error().
			Str("fruit_id", id.String()).
			Int("initial_stock", balance.InitialStock).
			Int("net_movement", balance.NetMovement).
			Int("stock", balance.Stock).
			Msg("stock ledger out of balance")
	}

	return &model.StockHistoryPage{
		Entries:  entries,
		Balance:  *balance,
		Balanced: balance.Balanced(),
	}, nil
}

func (s *fruitService) Stats(ctx context.Context) (*model.FruitStats, error) {
	stats, err := s.fruitRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fruit stats: %w", err)
	}
	return stats, nil
}

// UploadImage stores the image and sets it as the fruit's image.
func (s *fruitService) UploadImage(ctx context.Context, id uuid.UUID, upload Upload) (*model.Fruit, error) {
	upload, err := sniffUpload(upload, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	fruit, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.store.Put(ctx, uploadKey("fruit-"+id.String(), s.now(), upload.Filename), upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		s.logger.Error().Err(err).Str("fruit_id", id.String()).Msg("failed to store fruit image")
		return nil, fmt.Errorf("failed to store fruit image: %w", err)
	}

	fruit.ImageURL = &url
	fruit.UpdatedAt = s.now().UTC()
	if err := s.fruitRepo.Update(ctx, fruit); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update fruit image: %w", err)
	}

	return fruit, nil
}

func (s *fruitService) get(ctx context.Context, id uuid.UUID) (*model.Fruit, error) {
	fruit, err := s.fruitRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get fruit: %w", err)
	}
	if fruit == nil {
		return nil, model.ErrFruitNotFound
	}
	return fruit, nil
}
