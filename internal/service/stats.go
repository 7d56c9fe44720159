package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-marketplace-api/internal/access"
	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/feed"
	"github.com/flicky/go-marketplace-api/internal/model"
	"github.com/flicky/go-marketplace-api/internal/pricing"
	"github.com/flicky/go-marketplace-api/internal/repository"
)

type SalesFeed interface {
	Recent(ctx context.Context, sellerID uuid.UUID, limit int64) ([]feed.Entry, error)
}

type StatsService struct {
	statsRepo repository.StatsRepository
	feed      SalesFeed
}

func NewStatsService(statsRepo repository.StatsRepository, feed SalesFeed) *StatsService {
	return &StatsService{statsRepo: statsRepo, feed: feed}
}

// GetSellerStats aggregates the caller's products straight from the database.
func (s *StatsService) GetSellerStats(ctx context.Context, caller access.Caller) (*dto.SellerStatsResponse, error) {
	if err := authorize(caller, access.SellerStats, access.Resource{}); err != nil {
		return nil, err
	}
	products, err := s.statsRepo.ListSellerProductSales(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("load seller sales: %w", err)
	}
	stats := SellerStats(products)
	return &stats, nil
}

// SellerStats reduces a seller's products in the order given.
//
// totalProductsSold sums the totalSold counters. Revenue uses each order
// line's frozen price. The best seller starts as the first product and is
// replaced only by a strictly greater totalSold, so ties keep the earlier
// product and a lone product is always the best seller.
func SellerStats(products []model.ProductSales) dto.SellerStatsResponse {
	stats := dto.SellerStatsResponse{
		TotalRevenue:            decimal.Zero,
		TotalProductsRegistered: len(products),
	}
	if len(products) == 0 {
		return stats
	}

	best := bestSeller(&products[0])
	for i := range products {
		p := &products[i]
		revenue := pricing.Revenue(p.OrderItems)
		stats.TotalProductsSold += p.TotalSold
		stats.TotalRevenue = stats.TotalRevenue.Add(revenue)
		if p.TotalSold > best.TotalSold {
			best = bestSeller(p)
		}
	}
	stats.TotalRevenue = pricing.Round(stats.TotalRevenue)
	stats.BestSellingProduct = best
	return stats
}

func bestSeller(p *model.ProductSales) *dto.BestSellerResponse {
	return &dto.BestSellerResponse{
		ID:        p.ID,
		Name:      p.Name,
		TotalSold: p.TotalSold,
		Revenue:   pricing.Revenue(p.OrderItems),
	}
}

// RecentSales reads the caller's sales feed, newest first.
func (s *StatsService) RecentSales(ctx context.Context, caller access.Caller, limit int64) ([]feed.Entry, error) {
	if err := authorize(caller, access.SellerStats, access.Resource{}); err != nil {
		return nil, err
	}
	entries, err := s.feed.Recent(ctx, caller.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("read sales feed: %w", err)
	}
	return entries, nil
}
