package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-marketplace-api/internal/model"
)

type StatsRepository interface {
	// ListSellerProductSales returns every product of the seller, oldest
	// first, each with all order lines that sold it. Products and lines are
	// read from one snapshot, so totalSold always agrees with the lines.
	ListSellerProductSales(ctx context.Context, sellerID uuid.UUID) ([]model.ProductSales, error)
}

type pgStatsRepo struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &pgStatsRepo{pool: pool}
}

func (r *pgStatsRepo) ListSellerProductSales(ctx context.Context, sellerID uuid.UUID) ([]model.ProductSales, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin stats snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	products, err := productSales(ctx, tx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stats snapshot: %w", err)
	}
	return products, nil
}

func productSales(ctx context.Context, q querier, sellerID uuid.UUID) ([]model.ProductSales, error) {
	rows, err := q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE seller_id = $1 ORDER BY created_at, id`, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	defer rows.Close()

	var products []model.ProductSales
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var p model.ProductSales
		if err := rows.Scan(productDest(&p.Product)...); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	rows.Close()
	if len(products) == 0 {
		return products, nil
	}

	itemRows, err := q.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price
		 FROM order_items oi JOIN products p ON p.id = oi.product_id
		 WHERE p.seller_id = $1 ORDER BY oi.id`, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list seller order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it model.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		i, ok := index[it.ProductID]
		if !ok {
			continue
		}
		products[i].OrderItems = append(products[i].OrderItems, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("list seller order items: %w", err)
	}
	return products, nil
}
