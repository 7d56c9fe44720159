package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-marketplace-api/internal/model"
)

// CheckoutTx is the set of writes a checkout performs. Every call made through
// one CheckoutTx commits or rolls back together.
type CheckoutTx interface {
	// LockCart loads the customer's cart with its items and locks the cart row
	// until the transaction ends. Returns nil when the customer has no cart.
	LockCart(ctx context.Context, customerID uuid.UUID) (*model.CartDetail, error)
	CreateOrder(ctx context.Context, order *model.Order) error
	CreateOrderItem(ctx context.Context, item *model.OrderItem) error
	IncrementTotalSold(ctx context.Context, productID uuid.UUID, quantity int) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type CheckoutRepository interface {
	// WithinTx runs fn in a read committed transaction. It commits when fn
	// returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error
}

type pgCheckoutRepo struct{ pool *pgxpool.Pool }

func NewCheckoutRepository(pool *pgxpool.Pool) CheckoutRepository {
	return &pgCheckoutRepo{pool: pool}
}

func (r *pgCheckoutRepo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgCheckoutTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkout: %w", err)
	}
	return nil
}

type pgCheckoutTx struct{ tx pgx.Tx }

func (t *pgCheckoutTx) LockCart(ctx context.Context, customerID uuid.UUID) (*model.CartDetail, error) {
	return loadCart(ctx, t.tx, "customer_id = $1", "FOR UPDATE", customerID)
}

func (t *pgCheckoutTx) CreateOrder(ctx context.Context, order *model.Order) error {
	order.ID = uuid.New()
	err := t.tx.QueryRow(ctx,
		`INSERT INTO orders (id, customer_id, total, created_at) VALUES ($1, $2, $3, NOW()) RETURNING created_at`,
		order.ID, order.CustomerID, order.Total,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (t *pgCheckoutTx) CreateOrderItem(ctx context.Context, item *model.OrderItem) error {
	item.ID = uuid.New()
	_, err := t.tx.Exec(ctx,
		`INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

func (t *pgCheckoutTx) IncrementTotalSold(ctx context.Context, productID uuid.UUID, quantity int) error {
	ct, err := t.tx.Exec(ctx,
		`UPDATE products SET total_sold = total_sold + $2, updated_at = NOW() WHERE id = $1`, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("increment total sold: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (t *pgCheckoutTx) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
