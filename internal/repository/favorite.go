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

type FavoriteRepository interface {
	Create(ctx context.Context, fav *model.Favorite) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FavoriteDetail, error)
	GetByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (*model.FavoriteDetail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.FavoriteDetail, error)
	List(ctx context.Context) ([]model.FavoriteDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgFavoriteRepo struct{ pool *pgxpool.Pool }

func NewFavoriteRepository(pool *pgxpool.Pool) FavoriteRepository {
	return &pgFavoriteRepo{pool: pool}
}

var favoriteSelect = `SELECT f.id, f.customer_id, f.product_id, f.created_at, ` +
	prefixed("p", productColumns) + `
	FROM favorites f JOIN products p ON p.id = f.product_id`

func scanFavorite(row pgx.Row, f *model.FavoriteDetail) error {
	dest := append([]any{&f.ID, &f.CustomerID, &f.ProductID, &f.CreatedAt}, productDest(&f.Product)...)
	return row.Scan(dest...)
}

func (r *pgFavoriteRepo) Create(ctx context.Context, fav *model.Favorite) error {
	fav.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO favorites (id, customer_id, product_id, created_at) VALUES ($1, $2, $3, NOW()) RETURNING created_at`,
		fav.ID, fav.CustomerID, fav.ProductID,
	).Scan(&fav.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create favorite: %w", err)
	}
	return nil
}

func (r *pgFavoriteRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.FavoriteDetail, error) {
	return r.getOne(ctx, favoriteSelect+` WHERE f.id = $1`, id)
}

func (r *pgFavoriteRepo) GetByCustomerAndProduct(ctx context.Context, customerID, productID uuid.UUID) (*model.FavoriteDetail, error) {
	return r.getOne(ctx, favoriteSelect+` WHERE f.customer_id = $1 AND f.product_id = $2`, customerID, productID)
}

func (r *pgFavoriteRepo) getOne(ctx context.Context, query string, args ...any) (*model.FavoriteDetail, error) {
	f := &model.FavoriteDetail{}
	if err := scanFavorite(r.pool.QueryRow(ctx, query, args...), f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return f, nil
}

func (r *pgFavoriteRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.FavoriteDetail, error) {
	return r.query(ctx, favoriteSelect+` WHERE f.customer_id = $1 ORDER BY f.created_at DESC, f.id`, customerID)
}

func (r *pgFavoriteRepo) List(ctx context.Context) ([]model.FavoriteDetail, error) {
	return r.query(ctx, favoriteSelect+` ORDER BY f.created_at DESC, f.id`)
}

func (r *pgFavoriteRepo) query(ctx context.Context, query string, args ...any) ([]model.FavoriteDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favs []model.FavoriteDetail
	for rows.Next() {
		var f model.FavoriteDetail
		if err := scanFavorite(rows, &f); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

func (r *pgFavoriteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
