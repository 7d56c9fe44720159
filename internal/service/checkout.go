package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/events"
	"github.com/flicky/go-marketplace-api/internal/model"
	"github.com/flicky/go-marketplace-api/internal/pricing"
	"github.com/flicky/go-marketplace-api/internal/repository"
)

const CheckoutMessage = "Compra finalizada com sucesso!"

type CheckoutService struct {
	repo      repository.CheckoutRepository
	publisher events.Publisher
	log       *slog.Logger
}

func NewCheckoutService(repo repository.CheckoutRepository, publisher events.Publisher, log *slog.Logger) *CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CheckoutService{repo: repo, publisher: publisher, log: log}
}

// Checkout turns the caller's cart into an order. Order, order items, sales
// counters and the emptied cart commit together or not at all. Calling it
// twice with a non-empty cart places two orders.
func (s *CheckoutService) Checkout(ctx context.Context, caller access.Caller) (*dto.CheckoutResponse, error) {
	if err := authorize(caller, access.Checkout, access.Resource{}); err != nil {
		return nil, err
	}

	var order *model.OrderDetail
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx repository.CheckoutTx) error {
		var err error
		order, err = placeOrder(ctx, tx, caller.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order)

	return &dto.CheckoutResponse{Order: toOrderResponse(order), Message: CheckoutMessage}, nil
}

func placeOrder(ctx context.Context, tx repository.CheckoutTx, customerID uuid.UUID) (*model.OrderDetail, error) {
	cart, err := tx.LockCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &model.OrderDetail{Order: model.Order{
		CustomerID: customerID,
		Total:      pricing.CartTotal(cart.Items),
	}}
	if err := tx.CreateOrder(ctx, &order.Order); err != nil {
		return nil, err
	}

	for _, ci := range cart.Items {
		item := model.OrderItem{
			OrderID:   order.ID,
			ProductID: ci.ProductID,
			Quantity:  ci.Quantity,
			Price:     ci.Product.Price,
		}
		if err := tx.CreateOrderItem(ctx, &item); err != nil {
			return nil, err
		}
		if err := tx.IncrementTotalSold(ctx, ci.ProductID, ci.Quantity); err != nil {
			return nil, fmt.Errorf("product %s: %w", ci.ProductID, err)
		}
		product := ci.Product
		product.TotalSold += ci.Quantity
		order.Items = append(order.Items, model.OrderItemDetail{OrderItem: item, Product: product})
	}

	if err := tx.ClearCart(ctx, cart.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// publish runs after commit. A failure here is logged and never undoes the order.
func (s *CheckoutService) publish(ctx context.Context, order *model.OrderDetail) {
	if err := s.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(order)); err != nil && s.log != nil {
		s.log.Error("publish order placed",
			"order_id", order.ID,
			"customer_id", order.CustomerID,
			"error", err,
		)
	}
}
