package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLists struct {
	lists   map[string][]string
	keys    map[string]string
	execErr error
}

func newFakeLists() *fakeLists {
	return &fakeLists{lists: make(map[string][]string), keys: make(map[string]string)}
}

func (f *fakeLists) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// TxPipelined applies the queued commands only when the whole batch succeeds.
func (f *fakeLists) TxPipelined(_ context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	pipe := &fakePipe{}
	if err := fn(pipe); err != nil {
		return nil, err
	}
	if f.execErr != nil {
		return nil, f.execErr
	}
	for _, op := range pipe.ops {
		op(f)
	}
	return nil, nil
}

type fakePipe struct {
	redis.Pipeliner
	ops []func(*fakeLists)
}

func (p *fakePipe) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	p.ops = append(p.ops, func(f *fakeLists) {
		for _, v := range values {
			var s string
			switch v := v.(type) {
			case []byte:
				s = string(v)
			default:
				s = fmt.Sprint(v)
			}
			f.lists[key] = append([]string{s}, f.lists[key]...)
		}
	})
	return redis.NewIntResult(0, nil)
}

func (p *fakePipe) LTrim(_ context.Context, key string, start, stop int64) *redis.StatusCmd {
	p.ops = append(p.ops, func(f *fakeLists) {
		l := f.lists[key]
		if stop+1 < int64(len(l)) {
			l = l[:stop+1]
		}
		f.lists[key] = l[start:]
	})
	return redis.NewStatusResult("", nil)
}

func (p *fakePipe) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	p.ops = append(p.ops, func(f *fakeLists) { f.keys[key] = fmt.Sprint(value) })
	return redis.NewStatusResult("", nil)
}

func (f *fakeLists) LRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	l := f.lists[key]
	if stop+1 < int64(len(l)) {
		l = l[:stop+1]
	}
	if start > int64(len(l)) {
		start = int64(len(l))
	}
	return redis.NewStringSliceResult(l[start:], nil)
}

func entry(name string) Entry {
	return Entry{OrderID: uuid.New(), ProductID: uuid.New(), ProductName: name, Quantity: 1, Price: decimal.NewFromInt(1)}
}

func push(t *testing.T, f *Feed, seller uuid.UUID, e Entry) {
	t.Helper()
	applied, err := f.Apply(context.Background(), e.OrderID, seller, e)
	require.NoError(t, err)
	require.True(t, applied)
}

func TestFeed_RecentNewestFirst(t *testing.T) {
	f := New(newFakeLists(), 10)
	ctx := context.Background()
	seller := uuid.New()

	push(t, f, seller, entry("a"))
	push(t, f, seller, entry("b"))

	got, err := f.Recent(ctx, seller, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ProductName)
	assert.Equal(t, "a", got[1].ProductName)

	other, err := f.Recent(ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFeed_TrimsToMaxEntries(t *testing.T) {
	lists := newFakeLists()
	f := New(lists, 3)
	ctx := context.Background()
	seller := uuid.New()

	for i := 0; i < 5; i++ {
		push(t, f, seller, entry(fmt.Sprintf("p%d", i)))
	}
	assert.Len(t, lists.lists[key(seller)], 3)

	got, err := f.Recent(ctx, seller, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p4", got[0].ProductName)
}

func TestFeed_ApplyOncePerOrderAndSeller(t *testing.T) {
	lists := newFakeLists()
	f := New(lists, 10)
	ctx := context.Background()
	seller, other := uuid.New(), uuid.New()
	e := entry("lamp")

	push(t, f, seller, e)
	applied, err := f.Apply(ctx, e.OrderID, seller, e)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, lists.lists[key(seller)], 1)

	// Same order, different seller is a separate pair.
	push(t, f, other, e)
	assert.Len(t, lists.lists[key(other)], 1)
}

func TestFeed_FailedWriteLeavesNothingBehind(t *testing.T) {
	lists := newFakeLists()
	f := New(lists, 10)
	ctx := context.Background()
	seller := uuid.New()
	e := entry("lamp")

	lists.execErr = fmt.Errorf("connection reset")
	_, err := f.Apply(ctx, e.OrderID, seller, e)
	require.Error(t, err)
	assert.Empty(t, lists.lists[key(seller)])
	assert.Empty(t, lists.keys)

	lists.execErr = nil
	push(t, f, seller, e)
	assert.Len(t, lists.lists[key(seller)], 1)
}
