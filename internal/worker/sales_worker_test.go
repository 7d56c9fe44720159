package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-marketplace-api/internal/events"
	"github.com/flicky/go-marketplace-api/internal/feed"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fakeFeed mirrors the applied-pair bookkeeping of feed.Feed. failFor makes
// the next n writes for a seller fail.
type fakeFeed struct {
	mu      sync.Mutex
	pushed  map[uuid.UUID][]feed.Entry
	applied map[string]bool
	failFor map[uuid.UUID]int
	err     error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		pushed:  make(map[uuid.UUID][]feed.Entry),
		applied: make(map[string]bool),
		failFor: make(map[uuid.UUID]int),
	}
}

func (f *fakeFeed) Apply(_ context.Context, orderID, sellerID uuid.UUID, entries ...feed.Entry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := orderID.String() + ":" + sellerID.String()
	if f.applied[k] {
		return false, nil
	}
	if f.err != nil {
		return false, f.err
	}
	if f.failFor[sellerID] > 0 {
		f.failFor[sellerID]--
		return false, errors.New("connection reset")
	}
	f.applied[k] = true
	f.pushed[sellerID] = append(f.pushed[sellerID], entries...)
	return true, nil
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.pushed {
		n += len(e)
	}
	return n
}

func orderPlaced(t *testing.T, sellers ...uuid.UUID) (events.OrderPlaced, []byte) {
	t.Helper()
	ev := events.OrderPlaced{
		OrderID:    uuid.New(),
		CustomerID: uuid.New(),
		PlacedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	for i, s := range sellers {
		ev.Lines = append(ev.Lines, events.SaleLine{
			ProductID:   uuid.New(),
			ProductName: "Product",
			SellerID:    s,
			Quantity:    i + 1,
			Price:       decimal.RequireFromString("2.50"),
		})
	}
	body, err := ev.Encode()
	require.NoError(t, err)
	return ev, body
}

func TestSalesWorker_GroupsLinesBySeller(t *testing.T) {
	fd := newFakeFeed()
	w := NewSalesWorker(fd, discardLogger())
	a, b := uuid.New(), uuid.New()
	ev, body := orderPlaced(t, a, b, a)

	require.NoError(t, w.Handle(context.Background(), body))

	require.Len(t, fd.pushed[a], 2)
	require.Len(t, fd.pushed[b], 1)
	assert.Equal(t, ev.OrderID, fd.pushed[a][0].OrderID)
	assert.Equal(t, "2.50", fd.pushed[a][0].Amount.StringFixed(2))
	assert.Equal(t, "7.50", fd.pushed[a][1].Amount.StringFixed(2))
	assert.Equal(t, ev.PlacedAt, fd.pushed[b][0].SoldAt)
}

func TestSalesWorker_RedeliveryIsNoop(t *testing.T) {
	fd := newFakeFeed()
	w := NewSalesWorker(fd, discardLogger())
	_, body := orderPlaced(t, uuid.New())

	require.NoError(t, w.Handle(context.Background(), body))
	require.NoError(t, w.Handle(context.Background(), body))
	assert.Equal(t, 1, fd.count())
}

func TestSalesWorker_Malformed(t *testing.T) {
	w := NewSalesWorker(newFakeFeed(), discardLogger())

	assert.ErrorIs(t, w.Handle(context.Background(), []byte("not json")), ErrMalformed)
	assert.ErrorIs(t, w.Handle(context.Background(), []byte(`{"lines":[]}`)), ErrMalformed)
}

func TestSalesWorker_FailureIsRetried(t *testing.T) {
	fd := newFakeFeed()
	w := NewSalesWorker(fd, discardLogger())
	_, body := orderPlaced(t, uuid.New())

	fd.err = errors.New("redis down")
	err := w.Handle(context.Background(), body)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
	assert.Equal(t, 0, fd.count())

	fd.err = nil
	require.NoError(t, w.Handle(context.Background(), body))
	assert.Equal(t, 1, fd.count())
}

func TestSalesWorker_PartialFailureDoesNotDuplicate(t *testing.T) {
	fd := newFakeFeed()
	w := NewSalesWorker(fd, discardLogger())
	a, b := uuid.New(), uuid.New()
	_, body := orderPlaced(t, a, b)

	fd.failFor[b] = 1
	require.Error(t, w.Handle(context.Background(), body))
	require.Len(t, fd.pushed[a], 1)
	assert.Empty(t, fd.pushed[b])

	require.NoError(t, w.Handle(context.Background(), body))
	assert.Len(t, fd.pushed[a], 1)
	assert.Len(t, fd.pushed[b], 1)

	require.NoError(t, w.Handle(context.Background(), body))
	assert.Equal(t, 2, fd.count())
}
