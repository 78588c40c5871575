package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-core/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-core/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// Input carries the checkout form: billing and shipping snapshots, the
// chosen shipping and payment methods, and an optional coupon code.
type Input struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string

	ShippingFirstName  string
	ShippingLastName   string
	ShippingPhone      string
	ShippingAddress    string
	ShippingCity       string
	ShippingState      string
	ShippingPostalCode string
	ShippingCountry    string

	ShippingMethodID int64
	PaymentMethod    payment.Method
	CouponCode       string
	OrderNotes       string
}

// Result is what a successful checkout produced.
type Result struct {
	Order    order.Order     `json:"order"`
	Payment  payment.Payment `json:"payment"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
}

type Service interface {
	// PlaceOrder converts the user's cart into an order, order items,
	// coupon redemption and payment record, atomically, and clears
	// the cart. No partial order can ever exist.
	PlaceOrder(ctx context.Context, userID uuid.UUID, in Input) (*Result, error)
	// PreviewCoupon validates a code against the current cart total
	// without redeeming it. Unlike PlaceOrder, an unusable coupon is
	// an error here: this backs the live discount preview.
	PreviewCoupon(ctx context.Context, userID uuid.UUID, code string) (*CouponPreview, error)
}

type CouponPreview struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	NewTotal decimal.Decimal `json:"new_total"`
}

type service struct {
	store      Store
	cartRepo   cart.Repository
	couponRepo coupon.Repository
	now        func() time.Time
}

func NewService(store Store, cartRepo cart.Repository, couponRepo coupon.Repository) Service {
	return &service{
		store:      store,
		cartRepo:   cartRepo,
		couponRepo: couponRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, in Input) (*Result, error) {
	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, in.PaymentMethod)
	}

	var result *Result
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		cartID, err := tx.LockCart(ctx, userID)
		if err != nil {
			if errors.Is(err, cart.ErrCartNotFound) {
				return ErrEmptyCart
			}
			return err
		}

		items, err := tx.CartItems(ctx, cartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// Stock may have changed since the items went into the cart,
		// so every line is re-validated here.
		for _, item := range items {
			if item.Quantity > item.Product.Stock {
				return fmt.Errorf("%w: product %q has %d left, cart wants %d",
					cart.ErrInsufficientStock, item.Product.Name, item.Product.Stock, item.Quantity)
			}
		}

		subtotal := cart.TotalPrice(items)
		totalAmount := subtotal

		var redeemed *coupon.Coupon
		discount := decimal.Zero
		if in.CouponCode != "" {
			redeemed, discount = s.applyCoupon(ctx, tx, in.CouponCode, subtotal)
			if redeemed != nil {
				totalAmount = subtotal.Sub(discount)
				if totalAmount.IsNegative() {
					totalAmount = decimal.Zero
				}
			}
		}

		method, err := tx.ActiveShippingMethod(ctx, in.ShippingMethodID)
		if err != nil {
			return err
		}

		orderID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("service: failed to generate order id: %w", err)
		}

		o := &order.Order{
			OrderID:            orderID,
			UserID:             userID,
			Status:             order.StatusPending,
			FirstName:          in.FirstName,
			LastName:           in.LastName,
			Email:              in.Email,
			Phone:              in.Phone,
			ShippingFirstName:  in.ShippingFirstName,
			ShippingLastName:   in.ShippingLastName,
			ShippingPhone:      in.ShippingPhone,
			ShippingAddress:    in.ShippingAddress,
			ShippingCity:       in.ShippingCity,
			ShippingState:      in.ShippingState,
			ShippingPostalCode: in.ShippingPostalCode,
			ShippingCountry:    in.ShippingCountry,
			TotalAmount:        totalAmount,
			ShippingCost:       method.Cost,
			TaxAmount:          decimal.Zero,
			OrderNotes:         in.OrderNotes,
		}

		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}

		orderItems := make([]order.Item, 0, len(items))
		for _, item := range items {
			orderItems = append(orderItems, order.Item{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Quantity:    item.Quantity,
				// Price is captured now; later catalog changes must
				// not reach back into the order.
				Price: item.Product.Price,
			})
		}
		if err := tx.InsertOrderItems(ctx, o.ID, orderItems); err != nil {
			return err
		}
		o.Items = orderItems

		if redeemed != nil && discount.IsPositive() {
			if err := tx.InsertOrderCoupon(ctx, o.ID, redeemed.ID, discount); err != nil {
				return err
			}
			if err := tx.RedeemCoupon(ctx, redeemed.ID); err != nil {
				return err
			}
			o.Coupon = &order.CouponUse{CouponID: redeemed.ID, Code: redeemed.Code, DiscountAmount: discount}
		}

		paymentID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("service: failed to generate payment id: %w", err)
		}

		p := &payment.Payment{
			PaymentID: paymentID,
			OrderID:   o.ID,
			Method:    in.PaymentMethod,
			Status:    payment.StatusPending,
			Amount:    o.GrandTotal(),
		}
		if in.PaymentMethod.Electronic() {
			txnID, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("service: failed to generate transaction id: %w", err)
			}
			txnStr := txnID.String()
			p.TransactionID = &txnStr
		}
		if err := tx.InsertPayment(ctx, p); err != nil {
			return err
		}

		if err := tx.ClearCart(ctx, cartID); err != nil {
			return err
		}

		result = &Result{Order: *o, Payment: *p, Subtotal: subtotal, Discount: discount}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: checkout failed, transaction rolled back")
		return nil, err
	}

	log.Info().
		Stringer("order_id", result.Order.OrderID).
		Stringer("user_id", userID).
		Str("grand_total", result.Order.GrandTotal().StringFixed(2)).
		Msg("service: order placed")
	return result, nil
}

// applyCoupon resolves and validates a coupon code during checkout. An
// unusable code is deliberately dropped without failing the checkout;
// only the live preview endpoint surfaces coupon errors.
func (s *service) applyCoupon(ctx context.Context, tx Tx, code string, subtotal decimal.Decimal) (*coupon.Coupon, decimal.Decimal) {
	c, err := tx.CouponByCode(ctx, code)
	if err != nil {
		log.Info().Str("coupon_code", code).Msg("service: coupon code not usable, checking out without discount")
		return nil, decimal.Zero
	}

	discount := c.Discount(s.now(), subtotal)
	if !discount.IsPositive() {
		log.Info().Str("coupon_code", c.Code).Msg("service: coupon gave no discount, checking out without it")
		return nil, decimal.Zero
	}

	return c, discount
}

func (s *service) PreviewCoupon(ctx context.Context, userID uuid.UUID, code string) (*CouponPreview, error) {
	c, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	items, err := s.cartRepo.GetItems(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart items: %w", err)
	}

	cpn, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	total := cart.TotalPrice(items)
	if !cpn.IsValid(s.now()) {
		return nil, coupon.ErrCouponInvalid
	}

	discount := cpn.Discount(s.now(), total)
	return &CouponPreview{
		Code:     cpn.Code,
		Discount: discount,
		NewTotal: total.Sub(discount),
	}, nil
}
