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

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// Create opens the caller's cart. A customer has at most one.
func (s *CartService) Create(ctx context.Context, caller access.Caller) (*dto.CartResponse, error) {
	if err := authorize(caller, access.WriteCart, access.Owned(caller.ID)); err != nil {
		return nil, err
	}
	cart := &model.Cart{CustomerID: caller.ID}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCartExists
		}
		return nil, fmt.Errorf("create cart: %w", err)
	}
	resp := toCartResponse(&model.CartDetail{Cart: *cart})
	return &resp, nil
}

func (s *CartService) GetMine(ctx context.Context, caller access.Caller) (*dto.CartResponse, error) {
	cart, err := s.customerCart(ctx, caller)
	if err != nil {
		return nil, err
	}
	resp := toCartResponse(cart)
	return &resp, nil
}

func (s *CartService) List(ctx context.Context, caller access.Caller) ([]dto.CartResponse, error) {
	if err := authorize(caller, access.ListAll, access.Resource{}); err != nil {
		return nil, err
	}
	carts, err := s.cartRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	out := make([]dto.CartResponse, 0, len(carts))
	for i := range carts {
		out = append(out, toCartResponse(&carts[i]))
	}
	return out, nil
}

func (s *CartService) GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.cartFor(ctx, caller, access.ReadCart, id)
	if err != nil {
		return nil, err
	}
	resp := toCartResponse(cart)
	return &resp, nil
}

// Clear empties the caller's cart and returns it. The cart itself stays.
func (s *CartService) Clear(ctx context.Context, caller access.Caller) (*dto.CartResponse, error) {
	cart, err := s.customerCart(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.WriteCart, access.Owned(cart.CustomerID)); err != nil {
		return nil, err
	}
	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	cart.Items = nil
	resp := toCartResponse(cart)
	return &resp, nil
}

func (s *CartService) Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if _, err := s.cartFor(ctx, caller, access.WriteCart, id); err != nil {
		return err
	}
	if err := s.cartRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartNotFound
		}
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// AddItem puts quantity of the product in the cart, adding to any quantity
// already there.
func (s *CartService) AddItem(ctx context.Context, caller access.Caller, req dto.CreateCartItemRequest) (*dto.CartItemResponse, error) {
	if _, err := s.cartFor(ctx, caller, access.WriteCart, req.CartID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	item := &model.CartItem{CartID: req.CartID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	resp := toCartItemResponse(&model.CartItemDetail{CartItem: *item, Product: *product})
	return &resp, nil
}

func (s *CartService) ListItems(ctx context.Context, caller access.Caller, cartID uuid.UUID) ([]dto.CartItemResponse, error) {
	cart, err := s.cartFor(ctx, caller, access.ReadCart, cartID)
	if err != nil {
		return nil, err
	}
	return toCartResponse(cart).Items, nil
}

func (s *CartService) GetItem(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.CartItemResponse, error) {
	item, err := s.itemFor(ctx, caller, access.ReadCart, id)
	if err != nil {
		return nil, err
	}
	resp := toCartItemResponse(item)
	return &resp, nil
}

// UpdateItem sets the quantity outright.
func (s *CartService) UpdateItem(ctx context.Context, caller access.Caller, id uuid.UUID, req dto.UpdateCartItemRequest) (*dto.CartItemResponse, error) {
	item, err := s.itemFor(ctx, caller, access.WriteCart, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrBadRequest)
	}
	if err := s.cartRepo.UpdateItemQuantity(ctx, id, req.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	item.Quantity = req.Quantity
	resp := toCartItemResponse(item)
	return &resp, nil
}

func (s *CartService) DeleteItem(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if _, err := s.itemFor(ctx, caller, access.WriteCart, id); err != nil {
		return err
	}
	if err := s.cartRepo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (s *CartService) DeleteItemByProduct(ctx context.Context, caller access.Caller, cartID, productID uuid.UUID) error {
	if _, err := s.cartFor(ctx, caller, access.WriteCart, cartID); err != nil {
		return err
	}
	if err := s.cartRepo.DeleteItemByProduct(ctx, cartID, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (s *CartService) customerCart(ctx context.Context, caller access.Caller) (*model.CartDetail, error) {
	cart, err := s.cartRepo.GetByCustomer(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// cartFor loads a cart and checks the caller may perform a on it.
func (s *CartService) cartFor(ctx context.Context, caller access.Caller, a access.Action, id uuid.UUID) (*model.CartDetail, error) {
	cart, err := s.cartRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	if err := authorize(caller, a, access.Owned(cart.CustomerID)); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) itemFor(ctx context.Context, caller access.Caller, a access.Action, id uuid.UUID) (*model.CartItemDetail, error) {
	item, err := s.cartRepo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if _, err := s.cartFor(ctx, caller, a, item.CartID); err != nil {
		return nil, err
	}
	return item, nil
}
