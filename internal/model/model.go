package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSeller   Role = "SELLER"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Role      Role
	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	IsActive    bool
	TotalSold   int
	SellerID    uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Total      decimal.Decimal
	CreatedAt  time.Time
}

// OrderItem.Price is the product price at checkout time and never follows
// later product updates.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type Favorite struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	CreatedAt  time.Time
}
