// Package events carries facts about committed checkouts to other
// processes. Publishing is best effort: callers log failures and move on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-marketplace-api/internal/model"
)

const OrderPlacedTopic = "order.placed"

type SaleLine struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	SellerID    uuid.UUID       `json:"sellerId"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderPlaced is emitted once per committed checkout.
type OrderPlaced struct {
	OrderID    uuid.UUID       `json:"orderId"`
	CustomerID uuid.UUID       `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
	Lines      []SaleLine      `json:"lines"`
	PlacedAt   time.Time       `json:"placedAt"`
}

func NewOrderPlaced(order *model.OrderDetail) OrderPlaced {
	ev := OrderPlaced{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
		PlacedAt:   order.CreatedAt,
		Lines:      make([]SaleLine, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		ev.Lines = append(ev.Lines, SaleLine{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			SellerID:    it.Product.SellerID,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return ev
}

func (e OrderPlaced) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeOrderPlaced(body []byte) (OrderPlaced, error) {
	var e OrderPlaced
	if err := json.Unmarshal(body, &e); err != nil {
		return e, fmt.Errorf("decode order placed: %w", err)
	}
	if e.OrderID == uuid.Nil {
		return e, fmt.Errorf("decode order placed: missing order id")
	}
	return e, nil
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
	Close() error
}

// NopPublisher drops every event. Used when no transport is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
