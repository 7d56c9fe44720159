package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-marketplace-api/internal/model"
)

// ProductFilter selects a page of products. Price bounds are inclusive.
type ProductFilter struct {
	Limit    int
	Offset   int
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	IsActive bool
	SellerID *uuid.UUID
}

func (f ProductFilter) where() (string, []any) {
	conds := []string{"is_active = $1"}
	args := []any{f.IsActive}
	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.SellerID != nil {
		add("seller_id = $%d", *f.SellerID)
	}
	if f.Search != "" {
		add("(name ILIKE '%%' || $%[1]d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')", escapeLike(f.Search))
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	return strings.Join(conds, " AND "), args
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, name, description, price, image_url, is_active, total_sold, seller_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, 0, $7, NOW(), NOW()) RETURNING total_sold, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.ImageURL, product.IsActive, product.SellerID,
	).Scan(&product.TotalSold, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(productDest(p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error) {
	where, args := filter.where()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	products, err := r.query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *pgProductRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE seller_id = $1 ORDER BY created_at, id`, sellerID)
}

func (r *pgProductRepo) query(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(productDest(&p)...); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update never touches seller_id or total_sold.
func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name=$2, description=$3, price=$4, image_url=$5, is_active=$6, updated_at=NOW()
			  WHERE id=$1 RETURNING total_sold, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.ImageURL, product.IsActive,
	).Scan(&product.TotalSold, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
