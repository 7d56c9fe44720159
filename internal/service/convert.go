package service

import (
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/model"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
		IsActive: u.IsActive, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		TotalSold:   p.TotalSold,
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

func toCartItemResponse(it *model.CartItemDetail) dto.CartItemResponse {
	product := toProductResponse(&it.Product)
	return dto.CartItemResponse{
		ID: it.ID, CartID: it.CartID, ProductID: it.ProductID, Quantity: it.Quantity, Product: &product,
	}
}

func toCartResponse(c *model.CartDetail) dto.CartResponse {
	items := make([]dto.CartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, toCartItemResponse(&c.Items[i]))
	}
	return dto.CartResponse{
		ID: c.ID, CustomerID: c.CustomerID, Items: items, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func toOrderItemResponse(it *model.OrderItemDetail) dto.OrderItemResponse {
	product := toProductResponse(&it.Product)
	return dto.OrderItemResponse{
		ID: it.ID, OrderID: it.OrderID, ProductID: it.ProductID,
		Quantity: it.Quantity, Price: it.Price, Product: &product,
	}
}

func toOrderResponse(o *model.OrderDetail) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, toOrderItemResponse(&o.Items[i]))
	}
	return dto.OrderResponse{
		ID: o.ID, CustomerID: o.CustomerID, Total: o.Total, Items: items, CreatedAt: o.CreatedAt,
	}
}

func toOrderResponses(orders []model.OrderDetail) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func toFavoriteResponse(f *model.FavoriteDetail) dto.FavoriteResponse {
	product := toProductResponse(&f.Product)
	return dto.FavoriteResponse{
		ID: f.ID, CustomerID: f.CustomerID, ProductID: f.ProductID, CreatedAt: f.CreatedAt, Product: &product,
	}
}
