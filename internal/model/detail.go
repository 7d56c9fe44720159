package model

import "github.com/google/uuid"

// Relation expansions assembled by the repository layer.

type CartItemDetail struct {
	CartItem
	Product Product
}

type CartDetail struct {
	Cart
	Items []CartItemDetail
}

type OrderItemDetail struct {
	OrderItem
	Product Product
}

type OrderDetail struct {
	Order
	Items []OrderItemDetail
}

// SellerIDs returns the distinct sellers whose products appear in the order.
func (o *OrderDetail) SellerIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.Product.SellerID]; ok {
			continue
		}
		seen[it.Product.SellerID] = struct{}{}
		ids = append(ids, it.Product.SellerID)
	}
	return ids
}

type FavoriteDetail struct {
	Favorite
	Product Product
}

// ProductSales is a seller's product with every order line that sold it.
type ProductSales struct {
	Product
	OrderItems []OrderItem
}
