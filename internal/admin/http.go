package admin

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"ProductDesk/internal/product"
)

const (
	sessionCookie = "pd_session"
	sessionIDKey  = "id"
	maxFormBytes  = 64 << 10
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Server serves the product page. Every browser gets its own Page.
type Server struct {
	Sessions *Sessions
	Store    sessions.Store
	Log      *zap.Logger
}

// Routes mounts the page routes. writeLimit, when set, guards every POST.
func (s *Server) Routes(writeLimit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.index)
	r.Get("/products/{id}/delete", s.confirmDelete)

	r.Group(func(wr chi.Router) {
		if writeLimit != nil {
			wr.Use(writeLimit)
		}
		wr.Post("/form", s.updateForm)
		wr.Post("/submit", s.submit)
		wr.Post("/products/{id}/edit", s.edit)
		wr.Post("/products/{id}/delete", s.delete)
	})

	return r
}

// NewCookieStore returns the store that signs the session cookie with key.
func NewCookieStore(key []byte) *sessions.CookieStore {
	st := sessions.NewCookieStore(key)
	st.Options.HttpOnly = true
	st.Options.SameSite = http.SameSiteLaxMode
	return st
}

// page returns the caller's session page, opening a session when the
// cookie is missing, forged or expired.
func (s *Server) page(w http.ResponseWriter, r *http.Request) *Page {
	sess, err := s.Store.Get(r, sessionCookie)
	if err != nil {
		s.Log.Debug("session cookie rejected", zap.Error(err))
	}

	if id, ok := sess.Values[sessionIDKey].(string); ok {
		if p, ok := s.Sessions.Get(id); ok {
			return p
		}
	}

	id, p := s.Sessions.Create(context.WithoutCancel(r.Context()))
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		s.Log.Error("save session failed", zap.Error(err))
	}
	return p
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.page(w, r))
}

func (s *Server) updateForm(w http.ResponseWriter, r *http.Request) {
	p := s.page(w, r)
	if !s.applyForm(w, r, p) {
		return
	}
	s.render(w, http.StatusOK, p)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	p := s.page(w, r)
	// Posted values must not land in a form that is still saving.
	if p.Form().State() == StateSubmitting {
		s.render(w, http.StatusConflict, p)
		return
	}
	if !s.applyForm(w, r, p) {
		return
	}

	// The save must outlive the browser request.
	err := p.Submit(context.WithoutCancel(r.Context()))

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		s.render(w, http.StatusUnprocessableEntity, p)
	case errors.Is(err, ErrSubmitInFlight):
		s.render(w, http.StatusConflict, p)
	default:
		// Save failures were already reported to the page.
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	p := s.page(w, r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := p.Edit(id); err != nil {
		p.Alerts().Notify(MsgProductMissing)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.execute(w, http.StatusOK, "confirm.tmpl", confirmView{
		Prompt: PromptDelete,
		Action: "/products/" + strconv.FormatInt(id, 10) + "/delete",
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	p := s.page(w, r)
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	_, _ = p.Delete(context.WithoutCancel(r.Context()), id, func(string) bool { return confirmed })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyForm copies posted inputs into the form. Only values that differ
// from the current ones count as edits; the read-only id and unknown keys
// are ignored.
func (s *Server) applyForm(w http.ResponseWriter, r *http.Request, p *Page) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return false
	}

	current := p.Form().Values()
	for key, vals := range r.PostForm {
		f, ok := product.ParseField(key)
		if !ok || f == product.FieldID || len(vals) == 0 || vals[0] == current.Get(f) {
			continue
		}
		if err := p.SetField(f, vals[0]); err != nil {
			s.Log.Error("set field failed", zap.Error(err), zap.String("field", string(f)))
		}
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "bad product id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

type inputView struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
	Error       string
	ReadOnly    bool
}

type pageView struct {
	PageView
	Inputs   []inputView
	Creating bool
}

type confirmView struct {
	Prompt string
	Action string
}

var inputLabels = []struct {
	field       product.Field
	label       string
	placeholder string
}{
	{product.FieldID, "Product ID", "Product ID"},
	{product.FieldName, "Product Name", "Product name"},
	{product.FieldPrice, "Product Price", "Product price"},
	{product.FieldDescription, "Product Description", "Product description"},
	{product.FieldImage, "Product Image", "Product image"},
}

func buildPageView(v PageView) pageView {
	inputs := make([]inputView, 0, len(inputLabels))
	for _, in := range inputLabels {
		inputs = append(inputs, inputView{
			Name:        string(in.field),
			Label:       in.label,
			Placeholder: in.placeholder,
			Value:       v.Form.Values.Get(in.field),
			Error:       v.Form.Errors[in.field],
			ReadOnly:    in.field == product.FieldID,
		})
	}
	return pageView{PageView: v, Inputs: inputs, Creating: v.Form.Creating}
}

func (s *Server) render(w http.ResponseWriter, status int, p *Page) {
	v := p.View()
	v.Alerts = p.Alerts().Drain()
	s.execute(w, status, "page.tmpl", buildPageView(v))
}

func (s *Server) execute(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error("render failed", zap.Error(err), zap.String("template", name))
	}
}
