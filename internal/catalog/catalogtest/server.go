// Package catalogtest runs an in-memory stand-in for the remote product API
// so clients can be exercised over real HTTP.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ProductDesk/internal/product"
	"ProductDesk/pkg/kit"
)

type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Call is one request as the server received it.
type Call struct {
	Op   Op
	ID   int64
	Body product.Product
}

const maxBody = 1 << 20

type Server struct {
	Store *MemStore

	mu    sync.Mutex
	calls []Call
	fail  map[Op]int
	holds map[Op]chan struct{}
}

func New(seed ...product.Product) *Server {
	return &Server{
		Store: NewMemStore(seed...),
		fail:  map[Op]int{},
		holds: map[Op]chan struct{}{},
	}
}

// Start serves the API on a loopback listener closed at test cleanup.
func (s *Server) Start(t testing.TB) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)

	r.Get("/products", s.list)
	r.Post("/products", s.create)
	r.Patch("/products/{id}", s.update)
	r.Delete("/products/{id}", s.delete)

	return r
}

// Fail makes every op request answer with status until Recover is called.
func (s *Server) Fail(op Op, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = status
}

func (s *Server) Recover(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fail, op)
}

// Hold parks op requests after they are recorded until release is called.
func (s *Server) Hold(op Op) (release func()) {
	ch := make(chan struct{})

	s.mu.Lock()
	s.holds[op] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[op] == ch {
				delete(s.holds, op)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns the recorded requests, optionally filtered by op.
func (s *Server) Calls(ops ...Op) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, 0, len(s.calls))
	for _, c := range s.calls {
		if len(ops) == 0 || containsOp(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) Count(op Op) int { return len(s.Calls(op)) }

func containsOp(ops []Op, op Op) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// enter records the call and reports a status to fail with, or 0.
func (s *Server) enter(r *http.Request, c Call) int {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	hold := s.holds[c.Op]
	status := s.fail[c.Op]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
		}
	}
	return status
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if st := s.enter(r, Call{Op: OpList}); st != 0 {
		kit.WriteError(w, r, st, "injected failure", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.ListSortedByID())
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var f product.Fields
	if err := decode(w, r, &f); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if st := s.enter(r, Call{Op: OpCreate, Body: f.WithID(0)}); st != 0 {
		kit.WriteError(w, r, st, "injected failure", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, s.Store.Create(f))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var p product.Product
	if err := decode(w, r, &p); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if st := s.enter(r, Call{Op: OpUpdate, ID: id, Body: p}); st != 0 {
		kit.WriteError(w, r, st, "injected failure", nil)
		return
	}

	updated, found := s.Store.Update(id, p.Fields())
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if st := s.enter(r, Call{Op: OpDelete, ID: id}); st != 0 {
		kit.WriteError(w, r, st, "injected failure", nil)
		return
	}

	if !s.Store.Delete(id) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.NoContent(w)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
