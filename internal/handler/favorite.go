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

type FavoriteService interface {
	Add(ctx context.Context, caller access.Caller, productID uuid.UUID) (*dto.FavoriteResponse, error)
	List(ctx context.Context, caller access.Caller) ([]dto.FavoriteResponse, error)
	GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*dto.FavoriteResponse, error)
	Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error
	DeleteByProduct(ctx context.Context, caller access.Caller, productID uuid.UUID) error
}

type FavoriteHandler struct {
	svc FavoriteService
}

func NewFavoriteHandler(svc FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// Create takes the product from the JSON body.
func (h *FavoriteHandler) Create(c *gin.Context) {
	var req dto.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.add(c, req.ProductID)
}

// CreateForProduct takes the product from the path.
func (h *FavoriteHandler) CreateForProduct(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	h.add(c, productID)
}

func (h *FavoriteHandler) add(c *gin.Context, productID uuid.UUID) {
	resp, err := h.svc.Add(c.Request.Context(), middleware.CallerFrom(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FavoriteHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FavoriteHandler) GetByID(c *gin.Context) {
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

func (h *FavoriteHandler) Delete(c *gin.Context) {
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

func (h *FavoriteHandler) DeleteByProduct(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	if err := h.svc.DeleteByProduct(c.Request.Context(), middleware.CallerFrom(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
