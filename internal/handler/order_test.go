package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/handler"
	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MarkDelivered(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

var testOrderID = uuid.Must(uuid.FromString("00000000-0000-0000-0000-0000000000aa"))

func newOrderRouter(svc order.Service) *chi.Mux {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		handler.NewOrderHandler(svc).RegisterRoutes(r)
	})
	return router
}

func TestOrderHandler_MarkDelivered(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("MarkDelivered", mock.Anything, testUserID, testOrderID).
		Return(&order.Order{OrderID: testOrderID, Status: order.StatusDelivered}, nil).Once()

	req := asUser(httptest.NewRequest(http.MethodPost, "/orders/"+testOrderID.String()+"/delivered", nil), auth.RoleCustomer)
	rr := httptest.NewRecorder()
	newOrderRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_MarkDelivered_InvalidTransition(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("MarkDelivered", mock.Anything, testUserID, testOrderID).
		Return(nil, order.ErrInvalidTransition).Once()

	req := asUser(httptest.NewRequest(http.MethodPost, "/orders/"+testOrderID.String()+"/delivered", nil), auth.RoleCustomer)
	rr := httptest.NewRecorder()
	newOrderRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus_CustomerForbidden(t *testing.T) {
	mockService := new(MockOrderService)

	jsonBody := []byte(`{"status": "confirmed"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/orders/"+testOrderID.String()+"/status", bytes.NewBuffer(jsonBody)), auth.RoleCustomer)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newOrderRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	mockService.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_UpdateStatus_Staff(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("UpdateStatus", mock.Anything, testOrderID, order.StatusConfirmed).
		Return(&order.Order{OrderID: testOrderID, Status: order.StatusConfirmed}, nil).Once()

	jsonBody := []byte(`{"status": "confirmed"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/orders/"+testOrderID.String()+"/status", bytes.NewBuffer(jsonBody)), auth.RoleStaff)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newOrderRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_GetOrder_NotFoundHidesOwnership(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("GetForUser", mock.Anything, testUserID, testOrderID).
		Return(nil, order.ErrOrderNotFound).Once()

	req := asUser(httptest.NewRequest(http.MethodGet, "/orders/"+testOrderID.String(), nil), auth.RoleCustomer)
	rr := httptest.NewRecorder()
	newOrderRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	mockService.AssertExpectations(t)
}
