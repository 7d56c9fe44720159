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

type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)
	List(ctx context.Context) ([]model.OrderDetail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.OrderDetail, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.OrderDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*model.OrderItemDetail, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

var orderItemSelect = `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, ` +
	prefixed("p", productColumns) + `
	FROM order_items oi JOIN products p ON p.id = oi.product_id`

func scanOrderItem(row pgx.Row, it *model.OrderItemDetail) error {
	dest := append([]any{&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price}, productDest(&it.Product)...)
	return row.Scan(dest...)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	orders, err := r.listOrders(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func (r *pgOrderRepo) List(ctx context.Context) ([]model.OrderDetail, error) {
	return r.listOrders(ctx, "")
}

func (r *pgOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.OrderDetail, error) {
	return r.listOrders(ctx, `WHERE customer_id = $1`, customerID)
}

func (r *pgOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.OrderDetail, error) {
	return r.listOrders(ctx, `WHERE EXISTS (
		SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = orders.id AND p.seller_id = $1)`, sellerID)
}

// listOrders loads matching orders newest first and expands their items with
// one extra query.
func (r *pgOrderRepo) listOrders(ctx context.Context, where string, args ...any) ([]model.OrderDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_id, total, created_at FROM orders `+where+` ORDER BY created_at DESC, id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.OrderDetail
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var o model.OrderDetail
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	rows.Close()
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.pool.Query(ctx,
		orderItemSelect+` WHERE oi.order_id = ANY($1::uuid[]) ORDER BY oi.order_id, oi.id`, idStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it model.OrderItemDetail
		if err := scanOrderItem(itemRows, &it); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return orders, itemRows.Err()
}

func (r *pgOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) GetItem(ctx context.Context, id uuid.UUID) (*model.OrderItemDetail, error) {
	it := &model.OrderItemDetail{}
	if err := scanOrderItem(r.pool.QueryRow(ctx, orderItemSelect+` WHERE oi.id = $1`, id), it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return it, nil
}
