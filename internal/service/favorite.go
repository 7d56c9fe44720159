package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/model"
	"github.com/flicky/go-marketplace-api/internal/repository"
)

type FavoriteService struct {
	favRepo     repository.FavoriteRepository
	productRepo repository.ProductRepository
}

func NewFavoriteService(favRepo repository.FavoriteRepository, productRepo repository.ProductRepository) *FavoriteService {
	return &FavoriteService{favRepo: favRepo, productRepo: productRepo}
}

func (s *FavoriteService) Add(ctx context.Context, caller access.Caller, productID uuid.UUID) (*dto.FavoriteResponse, error) {
	if err := authorize(caller, access.WriteFavorite, access.Owned(caller.ID)); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	fav := &model.Favorite{CustomerID: caller.ID, ProductID: productID}
	if err := s.favRepo.Create(ctx, fav); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFavoriteExists
		}
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	resp := toFavoriteResponse(&model.FavoriteDetail{Favorite: *fav, Product: *product})
	return &resp, nil
}

// List returns the caller's favorites; admins see everyone's.
func (s *FavoriteService) List(ctx context.Context, caller access.Caller) ([]dto.FavoriteResponse, error) {
	var (
		favs []model.FavoriteDetail
		err  error
	)
	if access.Authorize(caller, access.ListAll, access.Resource{}) {
		favs, err = s.favRepo.List(ctx)
	} else {
		favs, err = s.favRepo.ListByCustomer(ctx, caller.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	out := make([]dto.FavoriteResponse, 0, len(favs))
	for i := range favs {
		out = append(out, toFavoriteResponse(&favs[i]))
	}
	return out, nil
}

func (s *FavoriteService) GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.FavoriteResponse, error) {
	fav, err := s.favoriteFor(ctx, caller, access.ReadFavorite, id)
	if err != nil {
		return nil, err
	}
	resp := toFavoriteResponse(fav)
	return &resp, nil
}

func (s *FavoriteService) Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if _, err := s.favoriteFor(ctx, caller, access.WriteFavorite, id); err != nil {
		return err
	}
	return s.delete(ctx, id)
}

func (s *FavoriteService) DeleteByProduct(ctx context.Context, caller access.Caller, productID uuid.UUID) error {
	fav, err := s.favRepo.GetByCustomerAndProduct(ctx, caller.ID, productID)
	if err != nil {
		return fmt.Errorf("get favorite: %w", err)
	}
	if fav == nil {
		return ErrFavoriteNotFound
	}
	return s.delete(ctx, fav.ID)
}

func (s *FavoriteService) delete(ctx context.Context, id uuid.UUID) error {
	if err := s.favRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) favoriteFor(ctx context.Context, caller access.Caller, a access.Action, id uuid.UUID) (*model.FavoriteDetail, error) {
	fav, err := s.favRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	if fav == nil {
		return nil, ErrFavoriteNotFound
	}
	if err := authorize(caller, a, access.Owned(fav.CustomerID)); err != nil {
		return nil, err
	}
	return fav, nil
}
