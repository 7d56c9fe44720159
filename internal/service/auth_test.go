package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/model"
)

const testSecret = "test-secret"

func register(t *testing.T, svc *AuthService, email string, role model.Role) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "John", Email: email, Password: "password123", Role: role,
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_RegisterDefaultsToCustomer(t *testing.T) {
	svc := NewAuthService(newFixture().users, testSecret, time.Hour)

	resp := register(t, svc, "test@example.com", "")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
	assert.True(t, resp.User.IsActive)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])
}

func TestAuthService_RegisterSeller(t *testing.T) {
	svc := NewAuthService(newFixture().users, testSecret, time.Hour)
	resp := register(t, svc, "seller@example.com", model.RoleSeller)
	assert.Equal(t, model.RoleSeller, resp.User.Role)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	svc := NewAuthService(newFixture().users, testSecret, time.Hour)
	register(t, svc, "test@example.com", "")

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "J", Email: "test@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{Name: "J", Email: "root@example.com", Password: "password123", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, ErrAdminSignup)
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.users, testSecret, time.Hour)
	reg := register(t, svc, "test@example.com", "")
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "test@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.store.users[reg.User.ID].IsActive = false
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "test@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserInactive)

	f.store.users[reg.User.ID].IsActive = true
	require.NoError(t, f.users.SoftDelete(ctx, reg.User.ID))
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "test@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
