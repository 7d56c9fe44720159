// Package access decides whether an authenticated caller may perform an
// action on a resource. Components call Authorize at the top of each method
// with the caller passed explicitly.
package access

import (
	"slices"

	"github.com/google/uuid"

	"github.com/flicky/go-marketplace-api/internal/model"
)

type Caller struct {
	ID   uuid.UUID
	Role model.Role
}

func (c Caller) Is(role model.Role) bool { return c.Role == role }

type Action string

const (
	ReadCart   Action = "cart:read"
	WriteCart  Action = "cart:write"
	ReadOrder  Action = "order:read"
	WriteOrder Action = "order:write"

	ReadFavorite  Action = "favorite:read"
	WriteFavorite Action = "favorite:write"

	CreateProduct      Action = "product:create"
	WriteProduct       Action = "product:write"
	ListSellerProducts Action = "product:list-seller"

	Checkout    Action = "checkout"
	SellerStats Action = "stats:seller"

	ReadUser   Action = "user:read"
	WriteUser  Action = "user:write"
	ManageUser Action = "user:manage"

	// ListAll covers unscoped listings such as every cart in the system.
	ListAll Action = "list:all"
)

// Resource describes what is being touched. OwnerID is the owning customer,
// seller or user. SellerIDs lists sellers with read access through an order.
type Resource struct {
	OwnerID   uuid.UUID
	SellerIDs []uuid.UUID
}

func Owned(owner uuid.UUID) Resource { return Resource{OwnerID: owner} }

// Authorize reports whether c may perform a on r. Admins are unrestricted;
// everyone else needs ownership or, for orders, a product in the order.
func Authorize(c Caller, a Action, r Resource) bool {
	if c.Role == model.RoleAdmin {
		return true
	}
	owns := c.ID != uuid.Nil && r.OwnerID == c.ID

	switch a {
	case ReadCart, WriteCart, Checkout:
		return c.Role == model.RoleCustomer && (a == Checkout || owns)
	case ReadOrder:
		switch c.Role {
		case model.RoleCustomer:
			return owns
		case model.RoleSeller:
			return slices.Contains(r.SellerIDs, c.ID)
		}
		return false
	case ReadFavorite, WriteFavorite:
		return owns
	case CreateProduct:
		return c.Role == model.RoleSeller
	case WriteProduct, ListSellerProducts:
		return c.Role == model.RoleSeller && owns
	case SellerStats:
		return c.Role == model.RoleSeller
	case ReadUser, WriteUser:
		return owns
	}
	return false
}
