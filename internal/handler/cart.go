package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/middleware"
	"github.com/flicky/go-marketplace-api/internal/model"
)

type CartService interface {
	Create(ctx context.Context, caller access.Caller) (*dto.CartResponse, error)
	GetMine(ctx context.Context, caller access.Caller) (*dto.CartResponse, error)
	List(ctx context.Context, caller access.Caller) ([]dto.CartResponse, error)
	GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.CartResponse, error)
	Clear(ctx context.Context, caller access.Caller) (*dto.CartResponse, error)
	Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error

	AddItem(ctx context.Context, caller access.Caller, req dto.CreateCartItemRequest) (*dto.CartItemResponse, error)
	ListItems(ctx context.Context, caller access.Caller, cartID uuid.UUID) ([]dto.CartItemResponse, error)
	GetItem(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.CartItemResponse, error)
	UpdateItem(ctx context.Context, caller access.Caller, id uuid.UUID, req dto.UpdateCartItemRequest) (*dto.CartItemResponse, error)
	DeleteItem(ctx context.Context, caller access.Caller, id uuid.UUID) error
	DeleteItemByProduct(ctx context.Context, caller access.Caller, cartID, productID uuid.UUID) error
}

type CartHandler struct {
	svc CartService
}

func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) Create(c *gin.Context) {
	resp, err := h.svc.Create(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List answers with the caller's own cart, or every cart for admins.
func (h *CartHandler) List(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller.Is(model.RoleAdmin) {
		carts, err := h.svc.List(c.Request.Context(), caller)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, carts)
		return
	}

	cart, err := h.svc.GetMine(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) Clear(c *gin.Context) {
	resp, err := h.svc.Clear(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.CreateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CartHandler) ListItems(c *gin.Context) {
	cartID, ok := queryID(c, "cartId")
	if !ok {
		return
	}
	resp, err := h.svc.ListItems(c.Request.Context(), middleware.CallerFrom(c), cartID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) GetItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetItem(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.svc.UpdateItem(c.Request.Context(), middleware.CallerFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) DeleteItemByProduct(c *gin.Context) {
	cartID, ok := paramID(c, "cartId")
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	if err := h.svc.DeleteItemByProduct(c.Request.Context(), middleware.CallerFrom(c), cartID, productID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
