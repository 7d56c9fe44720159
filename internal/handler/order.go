package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/middleware"
)

type OrderService interface {
	List(ctx context.Context, caller access.Caller) ([]dto.OrderResponse, error)
	GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.OrderResponse, error)
	Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error
	ListItems(ctx context.Context, caller access.Caller, orderID uuid.UUID) ([]dto.OrderItemResponse, error)
	GetItem(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.OrderItemResponse, error)
}

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) ListItems(c *gin.Context) {
	orderID, ok := queryID(c, "orderId")
	if !ok {
		return
	}
	items, err := h.orderService.ListItems(c.Request.Context(), middleware.CallerFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *OrderHandler) GetItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.orderService.GetItem(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
