package admin

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ProductDesk/internal/product"
)

type Lister interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Cache holds the last product list fetched from the API. It is only ever
// replaced wholesale by Refetch; nothing edits it locally.
type Cache struct {
	lister Lister
	log    *zap.Logger

	mu       sync.Mutex
	onError  func(error)
	items    []product.Product
	lastErr  error
	inflight int
	started  uint64
	applied  uint64
}

func NewCache(lister Lister, log *zap.Logger) *Cache {
	return &Cache{lister: lister, log: log}
}

// OnError registers fn to be called once for every failed refetch.
func (c *Cache) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Refetch reloads the whole list. On failure the previous items stay in
// place. When refetches overlap, the one started last wins.
func (c *Cache) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.inflight++
	c.mu.Unlock()

	items, err := c.lister.List(ctx)

	c.mu.Lock()
	c.inflight--
	fresh := seq > c.applied
	if fresh {
		c.applied = seq
		if err != nil {
			c.lastErr = err
		} else {
			c.items = items
			c.lastErr = nil
		}
	}
	onError := c.onError
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("refetch products failed", zap.Error(err), zap.Bool("stale_result", !fresh))
		if onError != nil {
			onError(err)
		}
		return err
	}

	c.log.Debug("products refetched", zap.Int("count", len(items)), zap.Bool("stale_result", !fresh))
	return nil
}

type Snapshot struct {
	Items   []product.Product
	Loading bool
	Err     error
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]product.Product, len(c.items))
	copy(items, c.items)
	return Snapshot{
		Items:   items,
		Loading: c.inflight > 0,
		Err:     c.lastErr,
	}
}

// Find looks id up in the current items.
func (c *Cache) Find(id int64) (product.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.items {
		if p.ID == id {
			return p, true
		}
	}
	return product.Product{}, false
}
