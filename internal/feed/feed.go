// Package feed keeps a short, capped list of each seller's latest sales in
// Redis. It is fed by the sales worker and never consulted for statistics.
//
// Each (order, seller) pair is applied at most once: the list write and the
// applied marker go through one MULTI/EXEC, so either both land or neither.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// AppliedTTL bounds how long an (order, seller) marker suppresses redeliveries.
const AppliedTTL = 24 * time.Hour

// Lists is the subset of *redis.Client the feed needs.
type Lists interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

type Entry struct {
	OrderID     uuid.UUID       `json:"orderId"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	SoldAt      time.Time       `json:"soldAt"`
}

type Feed struct {
	rdb        Lists
	maxEntries int64
}

func New(rdb Lists, maxEntries int64) *Feed {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Feed{rdb: rdb, maxEntries: maxEntries}
}

func key(sellerID uuid.UUID) string { return "sales:recent:" + sellerID.String() }

func appliedKey(orderID, sellerID uuid.UUID) string {
	return "sales:applied:" + orderID.String() + ":" + sellerID.String()
}

// Apply prepends the seller's entries for one order, trims the feed to the
// configured size and records the pair as applied. It reports false without
// writing when the pair was applied before. The last entry given becomes the
// newest.
func (f *Feed) Apply(ctx context.Context, orderID, sellerID uuid.UUID, entries ...Entry) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	marker := appliedKey(orderID, sellerID)
	n, err := f.rdb.Exists(ctx, marker).Result()
	if err != nil {
		return false, fmt.Errorf("check applied marker: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return false, fmt.Errorf("encode feed entry: %w", err)
		}
		values = append(values, b)
	}

	k := key(sellerID)
	_, err = f.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, k, values...)
		pipe.LTrim(ctx, k, 0, f.maxEntries-1)
		pipe.Set(ctx, marker, "1", AppliedTTL)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("write feed: %w", err)
	}
	return true, nil
}

// Recent returns up to limit entries, newest first.
func (f *Feed) Recent(ctx context.Context, sellerID uuid.UUID, limit int64) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	raw, err := f.rdb.LRange(ctx, key(sellerID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, s := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("decode feed entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
