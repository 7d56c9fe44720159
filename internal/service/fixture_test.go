package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/events"
	"github.com/flicky/go-marketplace-api/internal/model"
)

type fixture struct {
	store    *memStore
	users    mockUserRepo
	products mockProductRepo
	carts    mockCartRepo
	orders   mockOrderRepo
	favs     mockFavoriteRepo
}

func newFixture() *fixture {
	s := newMemStore()
	return &fixture{
		store:    s,
		users:    mockUserRepo{s},
		products: mockProductRepo{s},
		carts:    mockCartRepo{s},
		orders:   mockOrderRepo{s},
		favs:     mockFavoriteRepo{s},
	}
}

func caller(role model.Role) access.Caller {
	return access.Caller{ID: uuid.New(), Role: role}
}

func (f *fixture) product(t *testing.T, sellerID uuid.UUID, name, price string) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: decimal.RequireFromString(price), IsActive: true, SellerID: sellerID}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) cart(t *testing.T, customerID uuid.UUID) *model.Cart {
	t.Helper()
	c := &model.Cart{CustomerID: customerID}
	require.NoError(t, f.carts.Create(context.Background(), c))
	return c
}

func (f *fixture) addToCart(t *testing.T, cartID, productID uuid.UUID, qty int) {
	t.Helper()
	require.NoError(t, f.carts.AddItem(context.Background(), &model.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}))
}

type recordingPublisher struct {
	published []events.OrderPlaced
	err       error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, ev events.OrderPlaced) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
