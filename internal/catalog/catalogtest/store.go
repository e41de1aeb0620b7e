package catalogtest

import (
	"sort"
	"sync"

	"ProductDesk/internal/product"
)

// MemStore is an in-memory product table with server-assigned ids.
type MemStore struct {
	mu     sync.RWMutex
	m      map[int64]product.Product
	nextID int64
}

func NewMemStore(seed ...product.Product) *MemStore {
	s := &MemStore{m: map[int64]product.Product{}, nextID: 1}
	for _, p := range seed {
		if !p.Persisted() {
			p.ID = s.nextID
		}
		s.m[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

func (s *MemStore) ListSortedByID() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) Get(id int64) (product.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok
}

func (s *MemStore) Create(f product.Fields) product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := f.WithID(s.nextID)
	s.nextID++
	s.m[p.ID] = p
	return p
}

func (s *MemStore) Update(id int64, f product.Fields) (product.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return product.Product{}, false
	}
	p := f.WithID(id)
	s.m[id] = p
	return p, true
}

func (s *MemStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return false
	}
	delete(s.m, id)
	return true
}
