package service

import (
	"context"
	"fmt"
	"time"

	"fruitstore/internal/blob"
	"fruitstore/internal/metrics"
	"fruitstore/internal/model"
	"fruitstore/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	txr            repository.Transactor
	orderRepo      repository.OrderRepository
	paymentRepo    repository.PaymentRepository
	store          blob.Store
	maxUploadBytes int64
	metrics        *metrics.Metrics
	logger         zerolog.Logger

	now func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	txr repository.Transactor,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	store blob.Store,
	maxUploadBytes int64,
	m *metrics.Metrics,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		txr:            txr,
		orderRepo:      orderRepo,
		paymentRepo:    paymentRepo,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		metrics:        m,
		logger:         logger.With().Str("service", "payment").Logger(),
		now:            time.Now,
	}
}

// CreatePayment records a payment for a live order. Status defaults to PENDING and
// method defaults to the order's payment method.
func (s *paymentService) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := checkMoney("amountPaid", req.AmountPaid, model.MaxAmount); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.PaymentStatusPending
	}

	var payment *model.Payment
	err := s.txr.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.LockByID(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if order.Status == model.OrderStatusCancelled {
			return model.ErrOrderCancelled
		}

		method := order.PaymentMethod
		if req.Method != nil {
			method = *req.Method
		}

		now := s.now().UTC()
		p := &model.Payment{
			ID:          uuid.New(),
			OrderID:     order.ID,
			AmountPaid:  req.AmountPaid,
			Status:      status,
			Method:      method,
			ProofURL:    req.ProofURL,
			Notes:       req.Notes,
			PaymentDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "failed to create payment", req.OrderID)
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("order_id", payment.OrderID.String()).
		Str("status", string(payment.Status)).
		Msg("payment recorded")

	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, model.ErrPaymentNotFound
	}
	return p, nil
}

func (s *paymentService) List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.NewValidationError("Validation failed", map[string]string{"status": "must be one of: PENDING, COMPLETED, FAILED"})
	}

	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	payments, err := s.paymentRepo.ListByOrder(ctx, nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order payments: %w", err)
	}
	return payments, nil
}

// ApprovePayment moves a payment to COMPLETED and completes its order in the same transaction.
func (s *paymentService) ApprovePayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.transition(ctx, id, model.PaymentStatusCompleted)
}

// RejectPayment moves a payment to FAILED.
func (s *paymentService) RejectPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.transition(ctx, id, model.PaymentStatusFailed)
}

// transition applies the payment state machine. Re-applying the current status is a no-op.
// Rows are locked order first, then payment.
func (s *paymentService) transition(ctx context.Context, id uuid.UUID, target model.PaymentStatus) (*model.Payment, error) {
	var (
		payment *model.Payment
		changed bool
	)
	err := s.txr.WithTx(ctx, func(tx pgx.Tx) error {
		changed = false

		current, err := s.paymentRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.ErrPaymentNotFound
		}

		order, err := s.orderRepo.LockByID(ctx, tx, current.OrderID)
		if err != nil {
			return err
		}

		p, err := s.paymentRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return model.ErrPaymentNotFound
		}

		if p.Status == target {
			payment = p
			return nil
		}
		if !p.Status.CanTransitionTo(target) {
			return model.NewPaymentTransitionError(p.Status, target)
		}

		if target == model.PaymentStatusCompleted {
			if order == nil {
				return model.ErrOrderNotFound
			}
			if order.Status == model.OrderStatusCancelled {
				return model.NewPaymentTransitionError(p.Status, target)
			}
		}

		if err := s.paymentRepo.UpdateStatus(ctx, tx, p.ID, target); err != nil {
			return err
		}
		p.Status = target
		p.UpdatedAt = s.now().UTC()

		if target == model.PaymentStatusCompleted && order.Status != model.OrderStatusCompleted {
			order.Status = model.OrderStatusCompleted
			order.UpdatedAt = p.UpdatedAt
			if err := s.orderRepo.Update(ctx, tx, order); err != nil {
				return err
			}
		}

		payment = p
		changed = true
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			s.logger.Warn().
				Err(err).
				Str("payment_id", id.String()).
				Str("target", string(target)).
				Msg("payment transition rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to update payment status")
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	if changed {
		s.metrics.PaymentTransition(string(target))
		s.logger.Info().
			Str("payment_id", payment.ID.String()).
			Str("order_id", payment.OrderID.String()).
			Str("status", string(target)).
			Msg("payment status updated")
	}

	return payment, nil
}

// AttachProof validates proofURL and records it against the order.
func (s *paymentService) AttachProof(ctx context.Context, orderID uuid.UUID, proofURL string) (*model.Payment, error) {
	if err := validateStruct(&model.AttachProofRequest{ProofURL: proofURL}); err != nil {
		return nil, err
	}
	return s.attachProof(ctx, orderID, proofURL)
}

// UploadProof stores the image, then attaches its URL to the order.
func (s *paymentService) UploadProof(ctx context.Context, orderID uuid.UUID, upload Upload) (*model.Payment, error) {
	upload, err := sniffUpload(upload, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, model.ErrOrderCancelled
	}

	key := uploadKey("payment-proof", s.now(), upload.Filename)
	url, err := s.store.Put(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to store payment proof")
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}

	return s.attachProof(ctx, orderID, url)
}

// attachProof updates the latest payment when it is still PENDING, otherwise it opens a
// new PENDING payment for the order total carrying the proof.
func (s *paymentService) attachProof(ctx context.Context, orderID uuid.UUID, proofURL string) (*model.Payment, error) {
	var payment *model.Payment
	err := s.txr.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.LockByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if order.Status == model.OrderStatusCancelled {
			return model.ErrOrderCancelled
		}

		now := s.now().UTC()

		latest, err := s.paymentRepo.LockLatestByOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if latest != nil && latest.Status == model.PaymentStatusPending {
			if err := s.paymentRepo.UpdateProof(ctx, tx, latest.ID, proofURL); err != nil {
				return err
			}
			latest.ProofURL = &proofURL
			latest.UpdatedAt = now
			payment = latest
			return nil
		}

		p := &model.Payment{
			ID:          uuid.New(),
			OrderID:     order.ID,
			AmountPaid:  order.TotalAmount,
			Status:      model.PaymentStatusPending,
			Method:      order.PaymentMethod,
			ProofURL:    &proofURL,
			PaymentDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "failed to attach payment proof", orderID)
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("order_id", orderID.String()).
		Msg("payment proof attached")

	return payment, nil
}

// Summary aggregates payments; today starts at local midnight.
func (s *paymentService) Summary(ctx context.Context) (*model.PaymentSummary, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	summary, err := s.paymentRepo.Summary(ctx, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment summary: %w", err)
	}
	return summary, nil
}

func (s *paymentService) wrap(err error, msg string, orderID uuid.UUID) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
