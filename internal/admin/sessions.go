package admin

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStartTimeout bounds the first list load of a new session.
const DefaultStartTimeout = 5 * time.Second

type session struct {
	page     *Page
	lastSeen time.Time
}

// Sessions keeps one Page per browser session.
type Sessions struct {
	newPage func() *Page
	ttl     time.Duration
	now     func() time.Time

	// StartTimeout bounds Page.Start when a session opens.
	StartTimeout time.Duration

	mu    sync.Mutex
	pages map[string]*session
}

func NewSessions(newPage func() *Page, ttl time.Duration) *Sessions {
	return &Sessions{
		newPage:      newPage,
		ttl:          ttl,
		now:          time.Now,
		StartTimeout: DefaultStartTimeout,
		pages:        map[string]*session{},
	}
}

// Get returns the page of a live session and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.page, true
}

// Create opens a new session and runs its page's initial list load, bounded
// by StartTimeout. A failed load is already reported through the page alerts.
func (s *Sessions) Create(ctx context.Context) (string, *Page) {
	id := uuid.NewString()
	page := s.newPage()

	s.mu.Lock()
	s.pages[id] = &session{page: page, lastSeen: s.now()}
	s.mu.Unlock()

	if s.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.StartTimeout)
		defer cancel()
	}
	_ = page.Start(ctx)
	return id, page
}

// Sweep drops sessions idle for longer than the ttl and returns how many
// were dropped.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.pages {
		if sess.lastSeen.Before(cutoff) {
			delete(s.pages, id)
			n++
		}
	}
	return n
}

// SweepEvery runs Sweep on a ticker until ctx is done.
func (s *Sessions) SweepEvery(ctx context.Context, every time.Duration, onSwept func(n int)) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 && onSwept != nil {
				onSwept(n)
			}
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}
