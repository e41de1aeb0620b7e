package admin

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ProductDesk/internal/product"
)

const (
	PromptDelete      = "Are you sure ?"
	MsgFetchFailed    = "There was an error fetching products: %v"
	MsgSaveFailed     = "Could not save product, please try again"
	MsgDeleteFailed   = "Could not delete product, please try again"
	MsgProductMissing = "That product is no longer in the list"
)

var ErrNoSuchRow = errors.New("no such product row")

// Gateway is the remote product API as the page uses it.
type Gateway interface {
	Lister
	Saver
	Delete(ctx context.Context, id int64) error
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Page wires the product table, the form and the user actions together.
// One Page backs one browser session.
type Page struct {
	gw     Gateway
	log    *zap.Logger
	alerts *Alerts
	cache  *Cache
	form   *Form
}

func NewPage(gw Gateway, log *zap.Logger) *Page {
	p := &Page{
		gw:     gw,
		log:    log,
		alerts: &Alerts{},
	}
	p.cache = NewCache(gw, log)
	p.cache.OnError(func(err error) {
		p.alerts.Notify(fmt.Sprintf(MsgFetchFailed, err))
	})
	p.form = NewForm(&refetchingSaver{gw: gw, cache: p.cache}, p.alerts)
	return p
}

// Start performs the initial list load.
func (p *Page) Start(ctx context.Context) error {
	return p.cache.Refetch(ctx)
}

func (p *Page) Form() *Form     { return p.form }
func (p *Page) Cache() *Cache   { return p.cache }
func (p *Page) Alerts() *Alerts { return p.alerts }

func (p *Page) SetField(field product.Field, value string) error {
	return p.form.SetField(field, value)
}

// Edit loads the table row with the given id into the form.
func (p *Page) Edit(id int64) error {
	row, ok := p.cache.Find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, id)
	}
	p.form.LoadForEdit(row)
	return nil
}

// Submit submits the form. Save failures are logged and reported to the
// user; the form has been reset either way.
func (p *Page) Submit(ctx context.Context) error {
	err := p.form.Submit(ctx)

	var verr *ValidationError
	switch {
	case err == nil, errors.As(err, &verr), errors.Is(err, ErrSubmitInFlight):
	default:
		p.log.Error("save product failed", zap.Error(err))
		p.alerts.Notify(MsgSaveFailed)
	}
	return err
}

// Delete removes the product with id once confirm agrees. It reports
// whether the delete was attempted.
func (p *Page) Delete(ctx context.Context, id int64, confirm ConfirmFunc) (bool, error) {
	if !confirm(PromptDelete) {
		return false, nil
	}

	if err := p.gw.Delete(ctx, id); err != nil {
		p.log.Error("delete product failed", zap.Error(err), zap.Int64("product_id", id))
		p.alerts.Notify(MsgDeleteFailed)
		return true, err
	}

	_ = p.cache.Refetch(ctx)
	return true, nil
}

// PageView is everything the page template needs.
type PageView struct {
	Products []product.Product
	// Loading covers a list fetch or an update in flight.
	Loading bool
	Form    FormView
	Alerts  []string
}

// View renders the current state. It does not consume alerts.
func (p *Page) View() PageView {
	snap := p.cache.Snapshot()
	form := p.form.View()

	return PageView{
		Products: snap.Items,
		Loading:  snap.Loading || form.Updating,
		Form:     form,
	}
}

// refetchingSaver reloads the list after every successful save.
type refetchingSaver struct {
	gw    Gateway
	cache *Cache
}

func (s *refetchingSaver) Create(ctx context.Context, f product.Fields) (product.Product, error) {
	p, err := s.gw.Create(ctx, f)
	if err != nil {
		return product.Product{}, err
	}
	_ = s.cache.Refetch(ctx)
	return p, nil
}

func (s *refetchingSaver) Update(ctx context.Context, id int64, f product.Fields) (product.Product, error) {
	p, err := s.gw.Update(ctx, id, f)
	if err != nil {
		return product.Product{}, err
	}
	_ = s.cache.Refetch(ctx)
	return p, nil
}
