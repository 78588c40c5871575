package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vasiliy-maslov/ecommerce-core/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-core/internal/postgres"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
	ErrItemExists   = errors.New("cart item already exists")
)

type Repository interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	GetItems(ctx context.Context, cartID int64) ([]Item, error)
	GetItemByID(ctx context.Context, itemID int64) (*Item, error)
	GetItemByProduct(ctx context.Context, cartID, productID int64) (*Item, error)
	InsertItem(ctx context.Context, cartID, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context, cartID int64) error

	AddToWishlist(ctx context.Context, userID uuid.UUID, productID int64) error
	RemoveFromWishlist(ctx context.Context, userID uuid.UUID, productID int64) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]catalog.Product, error)
}

type repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id, user_id, created_at, updated_at
	`

	var c Cart
	err := r.db.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to get or create cart for user %s: %w", userID, err)
	}

	return &c, nil
}

const itemColumns = `
	ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at,
	p.id, p.category_id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
`

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.AddedAt,
		&item.Product.ID,
		&item.Product.CategoryID,
		&item.Product.Name,
		&item.Product.Description,
		&item.Product.Price,
		&item.Product.Stock,
		&item.Product.CreatedAt,
		&item.Product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetItems(ctx context.Context, cartID int64) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at
	`

	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for cart %d: %w", cartID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item for cart %d: %w", cartID, err)
		}
		items = append(items, *item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items for cart %d: %w", cartID, err)
	}

	return items, nil
}

func (r *repository) GetItemByID(ctx context.Context, itemID int64) (*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1
	`

	item, err := scanItem(r.db.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart item %d: %w", itemID, err)
	}

	return item, nil
}

func (r *repository) GetItemByProduct(ctx context.Context, cartID, productID int64) (*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 AND ci.product_id = $2
	`

	item, err := scanItem(r.db.QueryRow(ctx, query, cartID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart item for product %d: %w", productID, err)
	}

	return item, nil
}

func (r *repository) InsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		// Two concurrent adds of the same product can both miss the
		// existing line; the (cart_id, product_id) unique constraint
		// catches the loser.
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrItemExists
		}
		return fmt.Errorf("repository: failed to insert cart item for cart %d: %w", cartID, err)
	}

	return nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	query := `UPDATE cart_items SET quantity = $1 WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, query, quantity, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *repository) DeleteItem(ctx context.Context, itemID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item %d: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *repository) ClearCart(ctx context.Context, cartID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear cart %d: %w", cartID, err)
	}

	return nil
}

func (r *repository) AddToWishlist(ctx context.Context, userID uuid.UUID, productID int64) error {
	// Idempotent: adding an already-wishlisted product is a no-op.
	query := `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to add product %d to wishlist: %w", productID, err)
	}

	return nil
}

func (r *repository) RemoveFromWishlist(ctx context.Context, userID uuid.UUID, productID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove product %d from wishlist: %w", productID, err)
	}

	return nil
}

func (r *repository) ListWishlist(ctx context.Context, userID uuid.UUID) ([]catalog.Product, error) {
	query := `
		SELECT p.id, p.category_id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.user_id = $1
		ORDER BY wi.added_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query wishlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan wishlist product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating wishlist for user %s: %w", userID, err)
	}

	return products, nil
}
