package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/feed"
	"github.com/flicky/go-marketplace-api/internal/middleware"
)

type StatsService interface {
	GetSellerStats(ctx context.Context, caller access.Caller) (*dto.SellerStatsResponse, error)
	RecentSales(ctx context.Context, caller access.Caller, limit int64) ([]feed.Entry, error)
}

type StatsHandler struct {
	svc StatsService
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) Seller(c *gin.Context) {
	resp, err := h.svc.GetSellerStats(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StatsHandler) RecentSales(c *gin.Context) {
	var req dto.RecentSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	entries, err := h.svc.RecentSales(c.Request.Context(), middleware.CallerFrom(c), req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
