package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-marketplace-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required,min=6"`
	Role     model.Role `json:"role" binding:"omitempty,oneof=ADMIN SELLER CUSTOMER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Users ---

type CreateUserRequest struct {
	RegisterRequest
	IsActive *bool `json:"isActive"`
}

type UpdateUserRequest struct {
	Name     *string     `json:"name"`
	Email    *string     `json:"email" binding:"omitempty,email"`
	Password *string     `json:"password" binding:"omitempty,min=6"`
	Role     *model.Role `json:"role" binding:"omitempty,oneof=ADMIN SELLER CUSTOMER"`
	IsActive *bool       `json:"isActive"`
}

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// --- Products ---

type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,max=50"`
	Description string           `json:"description" binding:"max=500"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	ImageURL    string           `json:"imageUrl" binding:"omitempty,url"`
	IsActive    *bool            `json:"isActive"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=50"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl" binding:"omitempty,url"`
	IsActive    *bool            `json:"isActive"`
}

type ListProductsRequest struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=100"`
	Search   string `form:"search"`
	MinPrice string `form:"minPrice" binding:"omitempty,numeric"`
	MaxPrice string `form:"maxPrice" binding:"omitempty,numeric"`
	IsActive *bool  `form:"isActive"`
}

type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	IsActive    bool            `json:"isActive"`
	TotalSold   int             `json:"totalSold"`
	SellerID    uuid.UUID       `json:"sellerId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
	Meta PageMeta          `json:"meta"`
}

// --- Carts ---

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID uuid.UUID          `json:"customerId"`
	Items      []CartItemResponse `json:"items"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type CreateCartItemRequest struct {
	CartID    uuid.UUID `json:"cartId" binding:"required"`
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	CartID    uuid.UUID        `json:"cartId"`
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// --- Orders ---

type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	CustomerID uuid.UUID           `json:"customerId"`
	Total      decimal.Decimal     `json:"total"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"createdAt"`
}

type OrderItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	OrderID   uuid.UUID        `json:"orderId"`
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type CheckoutResponse struct {
	Order   OrderResponse `json:"order"`
	Message string        `json:"message"`
}

// --- Favorites ---

type CreateFavoriteRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

type FavoriteResponse struct {
	ID         uuid.UUID        `json:"id"`
	CustomerID uuid.UUID        `json:"customerId"`
	ProductID  uuid.UUID        `json:"productId"`
	CreatedAt  time.Time        `json:"createdAt"`
	Product    *ProductResponse `json:"product,omitempty"`
}

// --- Stats ---

type SellerStatsResponse struct {
	TotalProductsSold       int                 `json:"totalProductsSold"`
	TotalRevenue            decimal.Decimal     `json:"totalRevenue"`
	TotalProductsRegistered int                 `json:"totalProductsRegistered"`
	BestSellingProduct      *BestSellerResponse `json:"bestSellingProduct"`
}

type BestSellerResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	TotalSold int             `json:"totalSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentSalesRequest struct {
	Limit int64 `form:"limit,default=20" binding:"min=1,max=100"`
}
