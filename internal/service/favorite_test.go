package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-marketplace-api/internal/model"
)

func TestFavoriteService_Add(t *testing.T) {
	f := newFixture()
	p := f.product(t, uuid.New(), "Lamp", "1.00")
	svc := NewFavoriteService(f.favs, f.products)
	alice := caller(model.RoleCustomer)
	ctx := context.Background()

	fav, err := svc.Add(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, fav.CustomerID)
	require.NotNil(t, fav.Product)
	assert.Equal(t, "Lamp", fav.Product.Name)

	_, err = svc.Add(ctx, alice, p.ID)
	assert.ErrorIs(t, err, ErrFavoriteExists)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Add(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFavoriteService_ListScope(t *testing.T) {
	f := newFixture()
	p := f.product(t, uuid.New(), "Lamp", "1.00")
	svc := NewFavoriteService(f.favs, f.products)
	alice, bob := caller(model.RoleCustomer), caller(model.RoleCustomer)
	ctx := context.Background()

	_, err := svc.Add(ctx, alice, p.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, bob, p.ID)
	require.NoError(t, err)

	mine, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].CustomerID)

	all, err := svc.List(ctx, caller(model.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFavoriteService_DeleteOwnerOnly(t *testing.T) {
	f := newFixture()
	p := f.product(t, uuid.New(), "Lamp", "1.00")
	svc := NewFavoriteService(f.favs, f.products)
	alice := caller(model.RoleCustomer)
	ctx := context.Background()

	fav, err := svc.Add(ctx, alice, p.ID)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, caller(model.RoleCustomer), fav.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, caller(model.RoleCustomer), fav.ID), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, alice, fav.ID))
	_, err = svc.GetByID(ctx, alice, fav.ID)
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}

func TestFavoriteService_DeleteByProduct(t *testing.T) {
	f := newFixture()
	p := f.product(t, uuid.New(), "Lamp", "1.00")
	svc := NewFavoriteService(f.favs, f.products)
	alice := caller(model.RoleCustomer)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteByProduct(ctx, alice, p.ID), ErrFavoriteNotFound)

	_, err := svc.Add(ctx, alice, p.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteByProduct(ctx, alice, p.ID))
	assert.Empty(t, f.store.favorites)
}
