package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-core/internal/catalog"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// View is a cart with its lines and precomputed totals, the shape the
// cart page and the checkout preview both consume.
type View struct {
	Cart       Cart            `json:"cart"`
	Items      []Item          `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*View, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, itemID int64) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error

	AddToWishlist(ctx context.Context, userID uuid.UUID, productID int64) error
	RemoveFromWishlist(ctx context.Context, userID uuid.UUID, productID int64) error
	Wishlist(ctx context.Context, userID uuid.UUID) ([]catalog.Product, error)
	MoveToCart(ctx context.Context, userID uuid.UUID, productID int64) (*View, error)
}

type service struct {
	repo    Repository
	catalog catalog.Repository
}

func NewService(repo Repository, catalogRepo catalog.Repository) Service {
	return &service{repo: repo, catalog: catalogRepo}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	return s.view(ctx, c)
}

func (s *service) view(ctx context.Context, c *Cart) (*View, error) {
	items, err := s.repo.GetItems(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart items: %w", err)
	}

	return &View{
		Cart:       *c,
		Items:      items,
		TotalItems: TotalItems(items),
		TotalPrice: TotalPrice(items),
	}, nil
}

// AddItem creates a cart line or increments an existing one. The
// resulting quantity may not exceed current stock; on violation the
// line is left exactly as it was.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	existing, err := s.repo.GetItemByProduct(ctx, c.ID, productID)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.Stock {
			log.Warn().
				Int64("product_id", productID).
				Int("requested", newQuantity).
				Int("stock", product.Stock).
				Msg("service: add to cart exceeds stock")
			return nil, ErrInsufficientStock
		}
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, fmt.Errorf("service: failed to update cart item: %w", err)
		}
	case errors.Is(err, ErrItemNotFound):
		if quantity > product.Stock {
			return nil, ErrInsufficientStock
		}
		if err := s.repo.InsertItem(ctx, c.ID, productID, quantity); err != nil {
			// A concurrent add created the line between the lookup
			// and the insert; retry as an increment.
			if errors.Is(err, ErrItemExists) {
				return s.AddItem(ctx, userID, productID, quantity)
			}
			return nil, fmt.Errorf("service: failed to insert cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("service: failed to look up cart item: %w", err)
	}

	return s.view(ctx, c)
}

// UpdateItem replaces a line's quantity. Zero or negative deletes the
// line; anything above stock is rejected with the line unchanged.
func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (*View, error) {
	c, item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("service: failed to delete cart item: %w", err)
		}
		return s.view(ctx, c)
	}

	if quantity > item.Product.Stock {
		return nil, ErrInsufficientStock
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, fmt.Errorf("service: failed to update cart item: %w", err)
	}

	return s.view(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, itemID int64) (*View, error) {
	c, item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("service: failed to delete cart item: %w", err)
	}

	return s.view(ctx, c)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("service: failed to get cart: %w", err)
	}

	if err := s.repo.ClearCart(ctx, c.ID); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}

	return nil
}

// ownedItem resolves an item and checks it belongs to the user's cart.
// A foreign item is reported as not found rather than forbidden.
func (s *service) ownedItem(ctx context.Context, userID uuid.UUID, itemID int64) (*Cart, *Item, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item.CartID != c.ID {
		return nil, nil, ErrItemNotFound
	}

	return c, item, nil
}

func (s *service) AddToWishlist(ctx context.Context, userID uuid.UUID, productID int64) error {
	if _, err := s.catalog.GetProductByID(ctx, productID); err != nil {
		return err
	}

	return s.repo.AddToWishlist(ctx, userID, productID)
}

func (s *service) RemoveFromWishlist(ctx context.Context, userID uuid.UUID, productID int64) error {
	return s.repo.RemoveFromWishlist(ctx, userID, productID)
}

func (s *service) Wishlist(ctx context.Context, userID uuid.UUID) ([]catalog.Product, error) {
	return s.repo.ListWishlist(ctx, userID)
}

// MoveToCart removes a product from the wishlist and quick-adds one
// unit of it, honoring the stock ceiling.
func (s *service) MoveToCart(ctx context.Context, userID uuid.UUID, productID int64) (*View, error) {
	view, err := s.AddItem(ctx, userID, productID, 1)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return nil, err
	}

	return view, nil
}
