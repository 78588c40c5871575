package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/checkout"
	"github.com/vasiliy-maslov/ecommerce-core/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-core/internal/handler"
	"github.com/vasiliy-maslov/ecommerce-core/internal/shipping"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, in checkout.Input) (*checkout.Result, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Result), args.Error(1)
}

func (m *MockCheckoutService) PreviewCoupon(ctx context.Context, userID uuid.UUID, code string) (*checkout.CouponPreview, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.CouponPreview), args.Error(1)
}

type MockShippingRepository struct {
	mock.Mock
}

func (m *MockShippingRepository) GetActiveByID(ctx context.Context, id int64) (*shipping.Method, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Method), args.Error(1)
}

func (m *MockShippingRepository) ListActive(ctx context.Context) ([]shipping.Method, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Method), args.Error(1)
}

func newCheckoutRouter(svc checkout.Service, shippingRepo shipping.Repository) *chi.Mux {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		handler.NewCheckoutHandler(svc, shippingRepo).RegisterRoutes(r)
	})
	return router
}

func TestCheckoutHandler_PreviewCoupon(t *testing.T) {
	mockService := new(MockCheckoutService)
	mockService.On("PreviewCoupon", mock.Anything, testUserID, "SAVE10").Return(&checkout.CouponPreview{
		Code:     "SAVE10",
		Discount: decimal.RequireFromString("10.00"),
		NewTotal: decimal.RequireFromString("49.97"),
	}, nil).Once()

	jsonBody := []byte(`{"code": "SAVE10"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout/coupon-preview", bytes.NewBuffer(jsonBody)), auth.RoleCustomer)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newCheckoutRouter(mockService, new(MockShippingRepository)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	// Money keeps its trailing zeros: the envelope renders fixed
	// two-decimal strings, not decimal's normalized form.
	expected := map[string]any{
		"success":   true,
		"code":      "SAVE10",
		"discount":  "10.00",
		"new_total": "49.97",
	}
	if diff := cmp.Diff(expected, body); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	mockService.AssertExpectations(t)
}

// The live preview surfaces coupon errors, unlike the final checkout
// submission which drops an unusable code.
func TestCheckoutHandler_PreviewCoupon_InvalidSurfaced(t *testing.T) {
	mockService := new(MockCheckoutService)
	mockService.On("PreviewCoupon", mock.Anything, testUserID, "EXPIRED").
		Return(nil, coupon.ErrCouponInvalid).Once()

	jsonBody := []byte(`{"code": "EXPIRED"}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout/coupon-preview", bytes.NewBuffer(jsonBody)), auth.RoleCustomer)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newCheckoutRouter(mockService, new(MockShippingRepository)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_Checkout_ShippingContactFallsBackToBilling(t *testing.T) {
	mockService := new(MockCheckoutService)
	mockService.On("PlaceOrder", mock.Anything, testUserID, mock.MatchedBy(func(in checkout.Input) bool {
		return in.ShippingFirstName == "Sok" && in.ShippingLastName == "Dara" && in.ShippingPhone == "012345678"
	})).Return(&checkout.Result{}, nil).Once()

	jsonBody := []byte(`{
		"first_name": "Sok",
		"last_name": "Dara",
		"email": "sok.dara@example.com",
		"phone": "012345678",
		"shipping_address": "St 123",
		"shipping_city": "Phnom Penh",
		"shipping_postal_code": "12000",
		"shipping_country": "Cambodia",
		"shipping_method_id": 1,
		"payment_method": "cash_on_delivery"
	}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(jsonBody)), auth.RoleCustomer)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newCheckoutRouter(mockService, new(MockShippingRepository)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_Checkout_EmptyCart(t *testing.T) {
	mockService := new(MockCheckoutService)
	mockService.On("PlaceOrder", mock.Anything, testUserID, mock.Anything).
		Return(nil, checkout.ErrEmptyCart).Once()

	jsonBody := []byte(`{
		"first_name": "Sok",
		"last_name": "Dara",
		"email": "sok.dara@example.com",
		"phone": "012345678",
		"shipping_address": "St 123",
		"shipping_city": "Phnom Penh",
		"shipping_postal_code": "12000",
		"shipping_country": "Cambodia",
		"shipping_method_id": 1,
		"payment_method": "cash_on_delivery"
	}`)
	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(jsonBody)), auth.RoleCustomer)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newCheckoutRouter(mockService, new(MockShippingRepository)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	mockService.AssertExpectations(t)
}
