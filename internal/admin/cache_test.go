package admin_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ProductDesk/internal/admin"
	"ProductDesk/internal/product"
)

type listResult struct {
	items []product.Product
	err   error
}

// scriptedLister answers each List call from its own channel so tests can
// settle overlapping calls in any order.
type scriptedLister struct {
	mu    sync.Mutex
	calls []chan listResult
	ready chan int
}

func newScriptedLister() *scriptedLister {
	return &scriptedLister{ready: make(chan int, 8)}
}

func (l *scriptedLister) List(ctx context.Context) ([]product.Product, error) {
	ch := make(chan listResult, 1)

	l.mu.Lock()
	l.calls = append(l.calls, ch)
	n := len(l.calls) - 1
	l.mu.Unlock()

	l.ready <- n
	select {
	case res := <-ch:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *scriptedLister) answer(n int, res listResult) {
	l.mu.Lock()
	ch := l.calls[n]
	l.mu.Unlock()
	ch <- res
}

type staticLister struct {
	items []product.Product
	err   error
	n     int
}

func (l *staticLister) List(context.Context) ([]product.Product, error) {
	l.n++
	return l.items, l.err
}

func TestCache_RefetchReplacesItems(t *testing.T) {
	l := &staticLister{items: []product.Product{mug}}
	c := admin.NewCache(l, zap.NewNop())

	require.NoError(t, c.Refetch(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, []product.Product{mug}, snap.Items)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)

	got, ok := c.Find(7)
	assert.True(t, ok)
	assert.Equal(t, mug, got)
	_, ok = c.Find(8)
	assert.False(t, ok)
}

func TestCache_FailureKeepsStaleItemsAndCallsBackOnce(t *testing.T) {
	l := &staticLister{items: []product.Product{mug}}
	c := admin.NewCache(l, zap.NewNop())

	var got []error
	c.OnError(func(err error) { got = append(got, err) })

	require.NoError(t, c.Refetch(context.Background()))

	boom := errors.New("connection refused")
	l.items, l.err = nil, boom
	err := c.Refetch(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []error{boom}, got)

	snap := c.Snapshot()
	assert.Equal(t, []product.Product{mug}, snap.Items)
	assert.ErrorIs(t, snap.Err, boom)
	assert.False(t, snap.Loading)

	l.items, l.err = []product.Product{}, nil
	require.NoError(t, c.Refetch(context.Background()))
	assert.Len(t, got, 1)
	assert.NoError(t, c.Snapshot().Err)
	assert.Empty(t, c.Snapshot().Items)
}

func TestCache_SnapshotIsACopy(t *testing.T) {
	c := admin.NewCache(&staticLister{items: []product.Product{mug}}, zap.NewNop())
	require.NoError(t, c.Refetch(context.Background()))

	snap := c.Snapshot()
	snap.Items[0].Name = "changed"

	assert.Equal(t, "Mug", c.Snapshot().Items[0].Name)
}

func TestCache_OverlappingRefetchesKeepNewest(t *testing.T) {
	l := newScriptedLister()
	c := admin.NewCache(l, zap.NewNop())

	older := product.Product{ID: 1, Name: "Old"}
	newer := product.Product{ID: 2, Name: "New"}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = c.Refetch(context.Background()) }()
	first := <-l.ready
	go func() { defer wg.Done(); _ = c.Refetch(context.Background()) }()
	second := <-l.ready

	assert.True(t, c.Snapshot().Loading)

	l.answer(second, listResult{items: []product.Product{newer}})
	// The first refetch is still out, so the table keeps loading.
	assert.Eventually(t, func() bool {
		return len(c.Snapshot().Items) == 1
	}, timeout, tick)
	assert.True(t, c.Snapshot().Loading)

	l.answer(first, listResult{items: []product.Product{older}})
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, []product.Product{newer}, snap.Items)
	assert.False(t, snap.Loading)
}
