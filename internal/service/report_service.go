package service

import (
	"context"
	"fmt"
	"time"

	"fruitstore/internal/model"
	"fruitstore/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultReportWindow = 30 * 24 * time.Hour
	defaultTopFruits    = 5
)

// reportService implements ReportService.
type reportService struct {
	reportRepo repository.ReportRepository
	logger     zerolog.Logger

	now func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.With().Str("service", "report").Logger(),
		now:        time.Now,
	}
}

func (s *reportService) Sales(ctx context.Context, r model.DateRange) (*model.SalesSummary, error) {
	r, err := s.resolveRange(r)
	if err != nil {
		return nil, err
	}

	summary, err := s.reportRepo.SalesSummary(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales summary: %w", err)
	}
	return summary, nil
}

func (s *reportService) TopFruits(ctx context.Context, r model.DateRange, limit int) ([]model.TopFruit, error) {
	r, err := s.resolveRange(r)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopFruits
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	fruits, err := s.reportRepo.TopFruits(ctx, r, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top fruits: %w", err)
	}
	return fruits, nil
}

func (s *reportService) PaymentBreakdown(ctx context.Context, r model.DateRange) ([]model.PaymentBreakdown, error) {
	r, err := s.resolveRange(r)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.reportRepo.PaymentBreakdown(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment breakdown: %w", err)
	}
	return breakdown, nil
}

// resolveRange fills a missing bound so the window defaults to the last 30 days.
func (s *reportService) resolveRange(r model.DateRange) (model.DateRange, error) {
	if r.To.IsZero() {
		r.To = s.now().UTC()
	}
	if r.From.IsZero() {
		r.From = r.To.Add(-defaultReportWindow)
	}
	if !r.From.Before(r.To) {
		return r, model.NewValidationError("Validation failed", map[string]string{"from": "must be before to"})
	}
	return r, nil
}
