package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fruitstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type orderFixture struct {
	svc       *orderService
	txr       *fakeTransactor
	orders    *MockOrderRepository
	fruits    *MockFruitRepository
	stock     *MockStockHistoryRepository
	payments  *MockPaymentRepository
	customers *MockCustomerRepository
	users     *MockUserRepository
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		txr:       newFakeTransactor(),
		orders:    new(MockOrderRepository),
		fruits:    new(MockFruitRepository),
		stock:     new(MockStockHistoryRepository),
		payments:  new(MockPaymentRepository),
		customers: new(MockCustomerRepository),
		users:     new(MockUserRepository),
	}
	f.svc = NewOrderService(f.txr, OrderRepos{
		Orders:    f.orders,
		Fruits:    f.fruits,
		Stock:     f.stock,
		Payments:  f.payments,
		Customers: f.customers,
		Users:     f.users,
	}, nil, zerolog.Nop()).(*orderService)
	f.svc.now = func() time.Time { return fixedNow }
	f.svc.orderNumber = func(time.Time) string { return "ORD-1710498600000-ABC123XYZ" }
	return f
}

func (f *orderFixture) assertExpectations(t *testing.T) {
	f.orders.AssertExpectations(t)
	f.fruits.AssertExpectations(t)
	f.stock.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.customers.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func testFruit(name, price string, stock int) *model.Fruit {
	return &model.Fruit{
		ID:           uuid.New(),
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
		InitialStock: stock,
	}
}

func fruitMap(fruits ...*model.Fruit) map[uuid.UUID]*model.Fruit {
	m := make(map[uuid.UUID]*model.Fruit, len(fruits))
	for _, f := range fruits {
		m[f.ID] = f
	}
	return m
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	apple := testFruit("Apple", "1.50", 10)
	banana := testFruit("Banana", "0.25", 5)
	customer := &model.Customer{ID: uuid.New(), Name: "Alice"}

	req := &model.CreateOrderRequest{
		CustomerID:    customer.ID,
		PaymentMethod: model.PaymentMethodCash,
		Items: []model.OrderItemRequest{
			{FruitID: apple.ID, Quantity: 2, Price: decimalPtr("1.50")},
			{FruitID: banana.ID, Quantity: 3},
		},
	}

	f.customers.On("GetByID", ctx, customer.ID).Return(customer, nil)
	f.fruits.On("LockByIDs", ctx, mock.Anything, []uuid.UUID{apple.ID, banana.ID}).Return(fruitMap(apple, banana), nil)
	f.orders.On("CreateOrder", ctx, mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.TotalAmount.Equal(decimal.RequireFromString("3.75")) && o.Status == model.OrderStatusProcessing
	})).Return(nil)
	f.orders.On("CreateOrderItems", ctx, mock.Anything, mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].Subtotal.Equal(decimal.RequireFromString("3.00")) &&
			items[1].Subtotal.Equal(decimal.RequireFromString("0.75"))
	})).Return(nil)
	f.fruits.On("AdjustStock", ctx, mock.Anything, apple.ID, -2).Return(8, nil)
	f.fruits.On("AdjustStock", ctx, mock.Anything, banana.ID, -3).Return(2, nil)
	f.stock.On("Append", ctx, mock.Anything, mock.MatchedBy(func(entries []model.StockHistoryEntry) bool {
		return len(entries) == 2 &&
			entries[0].Quantity == -2 && entries[0].MovementType == model.MovementOut &&
			entries[0].Description == "Order ORD-1710498600000-ABC123XYZ"
	})).Return(nil)
	f.payments.On("Create", ctx, mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		return p.Status == model.PaymentStatusPending &&
			p.Method == model.PaymentMethodCash &&
			p.AmountPaid.Equal(decimal.RequireFromString("3.75"))
	})).Return(nil)

	order, err := f.svc.CreateOrder(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, "ORD-1710498600000-ABC123XYZ", order.OrderNumber)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("3.75")))
	assert.True(t, f.txr.tx.committed)
	f.assertExpectations(t)
}

func TestOrderService_CreateOrder_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	fruitID := uuid.New()

	tests := []struct {
		name    string
		req     *model.CreateOrderRequest
		wantErr error
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: model.ErrInvalidJSON,
		},
		{
			name: "no items",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
			},
			wantErr: model.ErrValidation,
		},
		{
			name: "missing customer",
			req: &model.CreateOrderRequest{
				PaymentMethod: model.PaymentMethodCash,
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: 1}},
			},
			wantErr: model.ErrValidation,
		},
		{
			name: "unknown payment method",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: "BARTER",
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: 1}},
			},
			wantErr: model.ErrValidation,
		},
		{
			name: "zero quantity",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: 0}},
			},
			wantErr: model.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: -4}},
			},
			wantErr: model.ErrInvalidQuantity,
		},
		{
			name: "non-positive client price",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: 1, Price: decimalPtr("0")}},
			},
			wantErr: model.ErrInvalidPrice,
		},
		{
			name: "client price with sub-cent digits",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: 1, Price: decimalPtr("1.005")}},
			},
			wantErr: model.ErrValidation,
		},
		{
			name: "quantity beyond integer column",
			req: &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
				Items:         []model.OrderItemRequest{{FruitID: fruitID, Quantity: model.MaxStock + 1}},
			},
			wantErr: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()

			order, err := f.svc.CreateOrder(ctx, tt.req)

			require.Error(t, err)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.txr.calls)
		})
	}
}

func TestOrderService_CreateOrder_ValidationDetails(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.CreateOrder(context.Background(), &model.CreateOrderRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: model.PaymentMethodCash,
		Items:         []model.OrderItemRequest{{Quantity: 1}},
	})

	var de *model.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, model.ErrCodeValidation, de.Code)
	assert.Contains(t, de.Details, "items[0].fruitId")
}

func TestOrderService_CreateOrder_Parties(t *testing.T) {
	ctx := context.Background()

	t.Run("customer not found", func(t *testing.T) {
		f := newOrderFixture()
		customerID := uuid.New()
		f.customers.On("GetByID", ctx, customerID).Return(nil, nil)

		_, err := f.svc.CreateOrder(ctx, &model.CreateOrderRequest{
			CustomerID:    customerID,
			PaymentMethod: model.PaymentMethodTransfer,
			Items:         []model.OrderItemRequest{{FruitID: uuid.New(), Quantity: 1}},
		})

		assert.ErrorIs(t, err, model.ErrCustomerNotFound)
		assert.Zero(t, f.txr.calls)
		f.assertExpectations(t)
	})

	t.Run("user not found", func(t *testing.T) {
		f := newOrderFixture()
		customerID := uuid.New()
		userID := uuid.New()
		f.customers.On("GetByID", ctx, customerID).Return(&model.Customer{ID: customerID}, nil)
		f.users.On("GetByID", ctx, userID).Return(nil, nil)

		_, err := f.svc.CreateOrder(ctx, &model.CreateOrderRequest{
			CustomerID:    customerID,
			UserID:        &userID,
			PaymentMethod: model.PaymentMethodTransfer,
			Items:         []model.OrderItemRequest{{FruitID: uuid.New(), Quantity: 1}},
		})

		assert.ErrorIs(t, err, model.ErrUserNotFound)
		f.assertExpectations(t)
	})
}

func TestOrderService_CreateOrder_StockAndPriceChecks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stock   int
		lines   func(id uuid.UUID) []model.OrderItemRequest
		found   bool
		wantErr error
	}{
		{
			name:  "insufficient stock",
			stock: 2,
			found: true,
			lines: func(id uuid.UUID) []model.OrderItemRequest {
				return []model.OrderItemRequest{{FruitID: id, Quantity: 3}}
			},
			wantErr: model.ErrInsufficientStock,
		},
		{
			name:  "duplicate lines exceed stock together",
			stock: 3,
			found: true,
			lines: func(id uuid.UUID) []model.OrderItemRequest {
				return []model.OrderItemRequest{{FruitID: id, Quantity: 2}, {FruitID: id, Quantity: 2}}
			},
			wantErr: model.ErrInsufficientStock,
		},
		{
			name:  "unknown fruit",
			stock: 10,
			found: false,
			lines: func(id uuid.UUID) []model.OrderItemRequest {
				return []model.OrderItemRequest{{FruitID: id, Quantity: 1}}
			},
			wantErr: model.ErrInsufficientStock,
		},
		{
			name:  "client price differs",
			stock: 10,
			found: true,
			lines: func(id uuid.UUID) []model.OrderItemRequest {
				return []model.OrderItemRequest{{FruitID: id, Quantity: 1, Price: decimalPtr("0.99")}}
			},
			wantErr: model.ErrPriceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			apple := testFruit("Apple", "1.50", tt.stock)
			customerID := uuid.New()

			locked := fruitMap()
			if tt.found {
				locked = fruitMap(apple)
			}

			f.customers.On("GetByID", ctx, customerID).Return(&model.Customer{ID: customerID}, nil)
			f.fruits.On("LockByIDs", ctx, mock.Anything, []uuid.UUID{apple.ID}).Return(locked, nil)

			order, err := f.svc.CreateOrder(ctx, &model.CreateOrderRequest{
				CustomerID:    customerID,
				PaymentMethod: model.PaymentMethodCash,
				Items:         tt.lines(apple.ID),
			})

			require.Error(t, err)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, f.txr.tx.rolledBack)
			f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
			f.fruits.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_TotalLimit(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	gold := testFruit("Golden Melon", "9999999999.99", 1000)
	customerID := uuid.New()

	f.customers.On("GetByID", ctx, customerID).Return(&model.Customer{ID: customerID}, nil)
	f.fruits.On("LockByIDs", ctx, mock.Anything, []uuid.UUID{gold.ID}).Return(fruitMap(gold), nil)

	order, err := f.svc.CreateOrder(ctx, &model.CreateOrderRequest{
		CustomerID:    customerID,
		PaymentMethod: model.PaymentMethodTransfer,
		Items:         []model.OrderItemRequest{{FruitID: gold.ID, Quantity: 500}},
	})

	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrValidation)
	var de *model.DomainError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Details, "items")
	assert.True(t, f.txr.tx.rolledBack)
	f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestOrderService_CreateOrder_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	apple := testFruit("Apple", "1.50", 10)
	customerID := uuid.New()

	f.customers.On("GetByID", ctx, customerID).Return(&model.Customer{ID: customerID}, nil)
	f.fruits.On("LockByIDs", ctx, mock.Anything, []uuid.UUID{apple.ID}).Return(fruitMap(apple), nil)
	f.orders.On("CreateOrder", ctx, mock.Anything, mock.Anything).Return(nil)
	f.orders.On("CreateOrderItems", ctx, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	order, err := f.svc.CreateOrder(ctx, &model.CreateOrderRequest{
		CustomerID:    customerID,
		PaymentMethod: model.PaymentMethodCash,
		Items:         []model.OrderItemRequest{{FruitID: apple.ID, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Nil(t, order)
	assert.Contains(t, err.Error(), "failed to create order")
	assert.False(t, isDomainError(err))
	assert.True(t, f.txr.tx.rolledBack)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		f := newOrderFixture()
		customer := &model.Customer{ID: uuid.New(), Name: "Alice"}
		order := &model.Order{ID: uuid.New(), CustomerID: customer.ID, Status: model.OrderStatusProcessing}
		items := []model.OrderItem{{ID: uuid.New(), OrderID: order.ID, FruitName: "Apple", Quantity: 2}}
		payments := []model.Payment{{ID: uuid.New(), OrderID: order.ID, Status: model.PaymentStatusPending}}

		f.orders.On("GetByID", ctx, nil, order.ID).Return(order, nil)
		f.orders.On("GetItems", ctx, nil, order.ID).Return(items, nil)
		f.payments.On("ListByOrder", ctx, nil, order.ID).Return(payments, nil)
		f.customers.On("GetByID", ctx, customer.ID).Return(customer, nil)

		detail, err := f.svc.GetByID(ctx, order.ID)

		require.NoError(t, err)
		assert.Equal(t, order.ID, detail.ID)
		assert.Len(t, detail.Items, 1)
		assert.Len(t, detail.Payments, 1)
		assert.Equal(t, "Alice", detail.Customer.Name)
		f.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("GetByID", ctx, nil, id).Return(nil, nil)

		detail, err := f.svc.GetByID(ctx, id)

		assert.Nil(t, detail)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults page size", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("List", ctx, model.OrderFilter{Limit: defaultListLimit}).Return([]model.Order{}, nil)

		orders, err := f.svc.List(ctx, model.OrderFilter{Offset: -5})

		require.NoError(t, err)
		assert.Empty(t, orders)
		f.assertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newOrderFixture()
		status := model.OrderStatus("SHIPPED")

		_, err := f.svc.List(ctx, model.OrderFilter{Status: &status})

		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

// expectCancellation wires the repository calls made when reversing order o with the given items.
func expectCancellation(ctx context.Context, f *orderFixture, o *model.Order, items []model.OrderItem) {
	f.orders.On("GetItems", ctx, mock.Anything, o.ID).Return(items, nil)
	f.fruits.On("LockByIDs", ctx, mock.Anything, mock.Anything).Return(fruitMap(), nil)
	for _, item := range items {
		f.fruits.On("AdjustStock", ctx, mock.Anything, item.FruitID, item.Quantity).Return(item.Quantity, nil)
	}
	f.stock.On("Append", ctx, mock.Anything, mock.MatchedBy(func(entries []model.StockHistoryEntry) bool {
		if len(entries) != len(items) {
			return false
		}
		for i, e := range entries {
			if e.Quantity != items[i].Quantity || e.MovementType != model.MovementIn {
				return false
			}
		}
		return true
	})).Return(nil)
	f.payments.On("FailByOrder", ctx, mock.Anything, o.ID).Return(int64(1), nil)
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	for _, status := range []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusCompleted} {
		t.Run("from "+string(status), func(t *testing.T) {
			f := newOrderFixture()
			o := &model.Order{ID: uuid.New(), OrderNumber: "ORD-1-AAAAAAAAA", Status: status}
			items := []model.OrderItem{
				{ID: uuid.New(), OrderID: o.ID, FruitID: uuid.New(), Quantity: 2},
				{ID: uuid.New(), OrderID: o.ID, FruitID: uuid.New(), Quantity: 5},
			}

			f.orders.On("LockByID", ctx, mock.Anything, o.ID).Return(o, nil)
			expectCancellation(ctx, f, o, items)
			f.orders.On("Update", ctx, mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
				return o.Status == model.OrderStatusCancelled
			})).Return(nil)

			cancelled, err := f.svc.CancelOrder(ctx, o.ID)

			require.NoError(t, err)
			assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
			assert.True(t, f.txr.tx.committed)
			f.assertExpectations(t)
		})
	}

	t.Run("already cancelled", func(t *testing.T) {
		f := newOrderFixture()
		o := &model.Order{ID: uuid.New(), Status: model.OrderStatusCancelled}
		f.orders.On("LockByID", ctx, mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.CancelOrder(ctx, o.ID)

		assert.ErrorIs(t, err, model.ErrOrderAlreadyCancelled)
		f.fruits.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "FailByOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockByID", ctx, mock.Anything, id).Return(nil, nil)

		_, err := f.svc.CancelOrder(ctx, id)

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_UpdateOrder(t *testing.T) {
	ctx := context.Background()
	statusPtr := func(s model.OrderStatus) *model.OrderStatus { return &s }
	methodPtr := func(m model.PaymentMethod) *model.PaymentMethod { return &m }

	t.Run("completes a processing order", func(t *testing.T) {
		f := newOrderFixture()
		o := &model.Order{ID: uuid.New(), Status: model.OrderStatusProcessing, PaymentMethod: model.PaymentMethodCash}
		f.orders.On("LockByID", ctx, mock.Anything, o.ID).Return(o, nil)
		f.orders.On("Update", ctx, mock.Anything, mock.Anything).Return(nil)

		updated, err := f.svc.UpdateOrder(ctx, o.ID, &model.UpdateOrderRequest{
			Status:        statusPtr(model.OrderStatusCompleted),
			PaymentMethod: methodPtr(model.PaymentMethodTransfer),
		})

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCompleted, updated.Status)
		assert.Equal(t, model.PaymentMethodTransfer, updated.PaymentMethod)
		f.orders.AssertNotCalled(t, "GetItems", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("cancelling runs the full reversal", func(t *testing.T) {
		f := newOrderFixture()
		o := &model.Order{ID: uuid.New(), Status: model.OrderStatusProcessing}
		items := []model.OrderItem{{ID: uuid.New(), OrderID: o.ID, FruitID: uuid.New(), Quantity: 4}}

		f.orders.On("LockByID", ctx, mock.Anything, o.ID).Return(o, nil)
		expectCancellation(ctx, f, o, items)
		f.orders.On("Update", ctx, mock.Anything, mock.Anything).Return(nil)

		updated, err := f.svc.UpdateOrder(ctx, o.ID, &model.UpdateOrderRequest{Status: statusPtr(model.OrderStatusCancelled)})

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, updated.Status)
		f.assertExpectations(t)
	})

	t.Run("cancelled order cannot be reopened", func(t *testing.T) {
		f := newOrderFixture()
		o := &model.Order{ID: uuid.New(), Status: model.OrderStatusCancelled}
		f.orders.On("LockByID", ctx, mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.UpdateOrder(ctx, o.ID, &model.UpdateOrderRequest{Status: statusPtr(model.OrderStatusProcessing)})

		assert.ErrorIs(t, err, model.ErrInvalidOrderTransition)
		f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled order keeps its payment method", func(t *testing.T) {
		f := newOrderFixture()
		o := &model.Order{ID: uuid.New(), Status: model.OrderStatusCancelled}
		f.orders.On("LockByID", ctx, mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.UpdateOrder(ctx, o.ID, &model.UpdateOrderRequest{PaymentMethod: methodPtr(model.PaymentMethodCash)})

		assert.ErrorIs(t, err, model.ErrOrderCancelled)
	})

	t.Run("invalid status value", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.UpdateOrder(ctx, uuid.New(), &model.UpdateOrderRequest{Status: statusPtr("LOST")})

		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Zero(t, f.txr.calls)
	})
}
