package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/model"
	"github.com/flicky/go-marketplace-api/internal/pricing"
	"github.com/flicky/go-marketplace-api/internal/repository"
)

type ProductService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) Create(ctx context.Context, caller access.Caller, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := authorize(caller, access.CreateProduct, access.Resource{}); err != nil {
		return nil, err
	}
	if req.Price == nil || !pricing.ValidPrice(*req.Price) {
		return nil, ErrInvalidPrice
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		IsActive:    active,
		SellerID:    caller.ID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	filter, err := productFilter(&req)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, req, filter)
}

// ListBySeller is List pinned to one seller. Sellers may only list their own.
func (s *ProductService) ListBySeller(ctx context.Context, caller access.Caller, sellerID uuid.UUID, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	if err := authorize(caller, access.ListSellerProducts, access.Owned(sellerID)); err != nil {
		return nil, err
	}
	filter, err := productFilter(&req)
	if err != nil {
		return nil, err
	}
	filter.SellerID = &sellerID
	return s.list(ctx, req, filter)
}

// ExportBySeller returns all of the seller's products, active or not, oldest first.
func (s *ProductService) ExportBySeller(ctx context.Context, caller access.Caller, sellerID uuid.UUID) ([]dto.ProductResponse, error) {
	if err := authorize(caller, access.ListSellerProducts, access.Owned(sellerID)); err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) list(ctx context.Context, req dto.ListProductsRequest, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &dto.ProductListResponse{
		Data: toProductResponses(products),
		Meta: dto.NewPageMeta(req.Page, req.Limit, total),
	}, nil
}

// productFilter also fills in page defaults on req.
func productFilter(req *dto.ListProductsRequest) (repository.ProductFilter, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	filter := repository.ProductFilter{
		Limit:    req.Limit,
		Offset:   dto.Offset(req.Page, req.Limit),
		Search:   req.Search,
		IsActive: true,
	}
	if req.IsActive != nil {
		filter.IsActive = *req.IsActive
	}

	var err error
	if filter.MinPrice, err = parsePrice(req.MinPrice); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice(req.MaxPrice); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price %q", ErrBadRequest, s)
	}
	return &d, nil
}

// Update applies the non-nil fields. The seller and the sales counter are
// never changed here.
func (s *ProductService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.WriteProduct, access.Owned(product.SellerID)); err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if !pricing.ValidPrice(*req.Price) {
			return nil, ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	product, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(caller, access.WriteProduct, access.Owned(product.SellerID)); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		if errors.Is(err, repository.ErrInUse) {
			return ErrProductHasSales
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *ProductService) get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
