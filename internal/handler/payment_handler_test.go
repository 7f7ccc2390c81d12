package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"fruitstore/internal/model"
	"fruitstore/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) payment(args mock.Arguments) (*model.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error) {
	return m.payment(m.Called(ctx, req))
}

func (m *MockPaymentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, id))
}

func (m *MockPaymentService) List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) ApprovePayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, id))
}

func (m *MockPaymentService) RejectPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return m.payment(m.Called(ctx, id))
}

func (m *MockPaymentService) AttachProof(ctx context.Context, orderID uuid.UUID, proofURL string) (*model.Payment, error) {
	return m.payment(m.Called(ctx, orderID, proofURL))
}

func (m *MockPaymentService) UploadProof(ctx context.Context, orderID uuid.UUID, upload service.Upload) (*model.Payment, error) {
	return m.payment(m.Called(ctx, orderID, upload))
}

func (m *MockPaymentService) Summary(ctx context.Context) (*model.PaymentSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentSummary), args.Error(1)
}

func TestPaymentHandler_Approve(t *testing.T) {
	logger := zerolog.Nop()
	paymentID := uuid.New()

	tests := []struct {
		name           string
		mockReturn     *model.Payment
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			mockReturn:     &model.Payment{ID: paymentID, Status: model.PaymentStatusCompleted},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Terminal payment",
			mockError:      model.NewPaymentTransitionError(model.PaymentStatusFailed, model.PaymentStatusCompleted),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Not found",
			mockError:      model.ErrPaymentNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPaymentService)
			handler := NewPaymentHandler(mockService, 1024, logger)
			mockService.On("ApprovePayment", mock.Anything, paymentID).Return(tt.mockReturn, tt.mockError)

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/payments/"+paymentID.String()+"/approve", nil), "id", paymentID.String())
			w := httptest.NewRecorder()

			handler.Approve(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestPaymentHandler_Create(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, 1024, zerolog.Nop())
	orderID := uuid.New()

	mockService.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req *model.CreatePaymentRequest) bool {
		return req.OrderID == orderID && req.AmountPaid.String() == "25.5"
	})).Return(nil, model.ErrOrderCancelled)

	body := `{"orderId":"` + orderID.String() + `","amountPaid":"25.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, model.ErrCodeOrderCancelled, resp.Code)
	mockService.AssertExpectations(t)
}

func multipartBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return buf, mw.FormDataContentType()
}

func TestPaymentHandler_UploadProof(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPaymentService)
		handler := NewPaymentHandler(mockService, 1024, logger)

		proof := "/uploads/payment-proof-1-receipt.png"
		mockService.On("UploadProof", mock.Anything, orderID, mock.MatchedBy(func(u service.Upload) bool {
			data, err := io.ReadAll(u.Body)
			return err == nil && u.Filename == "receipt.png" && u.ContentType == "image/png" &&
				u.Size == 4 && string(data) == "\x89PNG"
		})).Return(&model.Payment{ID: uuid.New(), OrderID: orderID, ProofURL: &proof}, nil)

		body, contentType := multipartBody(t, "receipt.png", "image/png", []byte("\x89PNG"))
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/payment-proof/upload", body), "id", orderID.String())
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.UploadProof(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Missing file", func(t *testing.T) {
		mockService := new(MockPaymentService)
		handler := NewPaymentHandler(mockService, 1024, logger)

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/payment-proof/upload", bytes.NewBufferString("{}")), "id", orderID.String())
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.UploadProof(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, model.ErrCodeInvalidFile, resp.Code)
		mockService.AssertNotCalled(t, "UploadProof", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentHandler_AttachProof(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService, 1024, zerolog.Nop())
	orderID := uuid.New()
	proof := "https://cdn.example.com/receipt.png"

	mockService.On("AttachProof", mock.Anything, orderID, proof).Return(&model.Payment{ID: uuid.New(), ProofURL: &proof}, nil)

	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/payment-proof", bytes.NewBufferString(`{"proofUrl":"`+proof+`"}`)),
		"id", orderID.String(),
	)
	w := httptest.NewRecorder()

	handler.AttachProof(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
