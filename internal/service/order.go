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

type OrderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// List returns the orders visible to the caller, newest first: a customer's
// own, a seller's containing any of their products, or all for admins.
func (s *OrderService) List(ctx context.Context, caller access.Caller) ([]dto.OrderResponse, error) {
	var (
		orders []model.OrderDetail
		err    error
	)
	switch caller.Role {
	case model.RoleAdmin:
		orders, err = s.orderRepo.List(ctx)
	case model.RoleSeller:
		orders, err = s.orderRepo.ListBySeller(ctx, caller.ID)
	case model.RoleCustomer:
		orders, err = s.orderRepo.ListByCustomer(ctx, caller.ID)
	default:
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *OrderService) GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orderFor(ctx, caller, access.ReadOrder, id)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if _, err := s.orderFor(ctx, caller, access.WriteOrder, id); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (s *OrderService) ListItems(ctx context.Context, caller access.Caller, orderID uuid.UUID) ([]dto.OrderItemResponse, error) {
	order, err := s.orderFor(ctx, caller, access.ReadOrder, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order).Items, nil
}

func (s *OrderService) GetItem(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.OrderItemResponse, error) {
	item, err := s.orderRepo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	if _, err := s.orderFor(ctx, caller, access.ReadOrder, item.OrderID); err != nil {
		return nil, err
	}
	resp := toOrderItemResponse(item)
	return &resp, nil
}

func (s *OrderService) orderFor(ctx context.Context, caller access.Caller, a access.Action, id uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	res := access.Resource{OwnerID: order.CustomerID, SellerIDs: order.SellerIDs()}
	if err := authorize(caller, a, res); err != nil {
		return nil, err
	}
	return order, nil
}
