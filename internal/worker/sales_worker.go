// Package worker consumes order.placed events and maintains each seller's
// recent sales feed. Delivery is at least once; the feed records each
// (order, seller) pair it applies, so a redelivery only writes the sellers a
// previous attempt did not reach.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flicky/go-marketplace-api/internal/events"
	"github.com/flicky/go-marketplace-api/internal/feed"
	"github.com/flicky/go-marketplace-api/internal/pricing"
)

// ErrMalformed marks a message that will never succeed and should be dead
// lettered instead of retried.
var ErrMalformed = errors.New("malformed message")

// FeedWriter applies one seller's share of an order. applied is false when
// the pair was written by an earlier delivery.
type FeedWriter interface {
	Apply(ctx context.Context, orderID, sellerID uuid.UUID, entries ...feed.Entry) (applied bool, err error)
}

type SalesWorker struct {
	feed FeedWriter
	log  *slog.Logger
}

func NewSalesWorker(feed FeedWriter, log *slog.Logger) *SalesWorker {
	return &SalesWorker{feed: feed, log: log}
}

// Handle applies one order.placed message. It returns nil for duplicates and
// wraps ErrMalformed for bodies that cannot be decoded.
func (w *SalesWorker) Handle(ctx context.Context, body []byte) error {
	ev, err := events.DecodeOrderPlaced(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	log := w.log.With("order_id", ev.OrderID, "customer_id", ev.CustomerID)

	var written, skipped int
	for _, sellerID := range sellerOrder(ev.Lines) {
		applied, err := w.feed.Apply(ctx, ev.OrderID, sellerID, entriesFor(ev, sellerID)...)
		if err != nil {
			return fmt.Errorf("apply feed for seller %s: %w", sellerID, err)
		}
		if applied {
			written++
		} else {
			skipped++
		}
	}
	if written == 0 {
		log.Info("order already applied to feed, skipping")
		return nil
	}
	log.Info("order applied to sales feed", "lines", len(ev.Lines), "sellers", written, "already_applied", skipped)
	return nil
}

// sellerOrder lists the distinct sellers in first-appearance order.
func sellerOrder(lines []events.SaleLine) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, l := range lines {
		if !seen[l.SellerID] {
			seen[l.SellerID] = true
			out = append(out, l.SellerID)
		}
	}
	return out
}

func entriesFor(ev events.OrderPlaced, sellerID uuid.UUID) []feed.Entry {
	var out []feed.Entry
	for _, l := range ev.Lines {
		if l.SellerID != sellerID {
			continue
		}
		out = append(out, feed.Entry{
			OrderID:     ev.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Amount:      pricing.Round(pricing.LineTotal(l.Price, l.Quantity)),
			SoldAt:      ev.PlacedAt,
		})
	}
	return out
}
