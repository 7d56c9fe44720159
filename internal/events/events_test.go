package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-marketplace-api/internal/model"
)

func TestNewOrderPlaced_CarriesFrozenPrices(t *testing.T) {
	seller := uuid.New()
	order := &model.OrderDetail{
		Order: model.Order{ID: uuid.New(), CustomerID: uuid.New(), Total: decimal.RequireFromString("99.98"), CreatedAt: time.Now()},
		Items: []model.OrderItemDetail{{
			OrderItem: model.OrderItem{ProductID: uuid.New(), Quantity: 2, Price: decimal.RequireFromString("49.99")},
			Product:   model.Product{Name: "Lamp", SellerID: seller, Price: decimal.RequireFromString("59.99")},
		}},
	}

	ev := NewOrderPlaced(order)
	require.Len(t, ev.Lines, 1)
	assert.Equal(t, seller, ev.Lines[0].SellerID)
	assert.Equal(t, "49.99", ev.Lines[0].Price.String())

	body, err := ev.Encode()
	require.NoError(t, err)
	decoded, err := DecodeOrderPlaced(body)
	require.NoError(t, err)
	assert.Equal(t, ev.OrderID, decoded.OrderID)
	assert.Equal(t, "Lamp", decoded.Lines[0].ProductName)
}

func TestDecodeOrderPlaced_Rejects(t *testing.T) {
	_, err := DecodeOrderPlaced([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeOrderPlaced([]byte(`{"total":"1.00"}`))
	assert.Error(t, err)
}
