package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-marketplace-api/internal/model"
)

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CartDetail, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CartDetail, error)
	List(ctx context.Context) ([]model.CartDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	AddItem(ctx context.Context, item *model.CartItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*model.CartItemDetail, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItemDetail, error)
	UpdateItemQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItemByProduct(ctx context.Context, cartID, productID uuid.UUID) error
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

const cartColumns = `id, customer_id, created_at, updated_at`

var cartItemSelect = `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, ` +
	prefixed("p", productColumns) + `
	FROM cart_items ci JOIN products p ON p.id = ci.product_id`

func scanCartItem(row pgx.Row, it *model.CartItemDetail) error {
	dest := append([]any{&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt}, productDest(&it.Product)...)
	return row.Scan(dest...)
}

// loadCart reads one cart matched by where and its items. lock is appended
// to the cart query as is, e.g. "FOR UPDATE" inside a transaction.
func loadCart(ctx context.Context, q querier, where, lock string, arg any) (*model.CartDetail, error) {
	cart := &model.CartDetail{}
	err := q.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE `+where+` `+lock, arg).
		Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	itemLock := ""
	if lock != "" {
		itemLock = "FOR SHARE OF p"
	}
	items, err := queryCartItems(ctx, q, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.created_at, ci.id `+itemLock, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

func queryCartItems(ctx context.Context, q querier, query string, args ...any) ([]model.CartItemDetail, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItemDetail
	for rows.Next() {
		var it model.CartItemDetail
		if err := scanCartItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) Create(ctx context.Context, cart *model.Cart) error {
	cart.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO carts (id, customer_id, created_at, updated_at) VALUES ($1, $2, NOW(), NOW()) RETURNING created_at, updated_at`,
		cart.ID, cart.CustomerID,
	).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r *pgCartRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.CartDetail, error) {
	return loadCart(ctx, r.pool, "id = $1", "", id)
}

func (r *pgCartRepo) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CartDetail, error) {
	return loadCart(ctx, r.pool, "customer_id = $1", "", customerID)
}

func (r *pgCartRepo) List(ctx context.Context) ([]model.CartDetail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cartColumns+` FROM carts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	var carts []model.CartDetail
	for rows.Next() {
		var c model.CartDetail
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}

	for i := range carts {
		items, err := r.ListItems(ctx, carts[i].ID)
		if err != nil {
			return nil, err
		}
		carts[i].Items = items
	}
	return carts, nil
}

func (r *pgCartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// AddItem inserts the line or, when the product is already in the cart, adds
// to its quantity in the same statement.
func (r *pgCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	item.ID = uuid.New()
	query := `INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
			  RETURNING id, quantity, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, item.ID, item.CartID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) GetItem(ctx context.Context, id uuid.UUID) (*model.CartItemDetail, error) {
	it := &model.CartItemDetail{}
	if err := scanCartItem(r.pool.QueryRow(ctx, cartItemSelect+` WHERE ci.id = $1`, id), it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return it, nil
}

func (r *pgCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItemDetail, error) {
	return queryCartItems(ctx, r.pool, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.created_at, ci.id`, cartID)
}

func (r *pgCartRepo) UpdateItemQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) DeleteItemByProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
