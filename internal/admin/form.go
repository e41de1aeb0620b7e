package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ProductDesk/internal/product"
)

const MsgSubmitted = "Form submitted"

var (
	ErrSubmitInFlight = errors.New("a submit is already in flight")
	ErrReadOnlyField  = errors.New("field is read-only")
	ErrUnknownField   = errors.New("unknown field")
)

// ValidationError is returned by Submit when at least one field fails its
// rule. The gateway is not called.
type ValidationError struct {
	Fields product.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[product.Field(k)]
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Values is what the form inputs currently hold.
type Values struct {
	ID          int64
	Name        string
	Price       string
	Description string
	Image       string
}

func DefaultValues() Values {
	return Values{Price: "0"}
}

func valuesOf(p product.Product) Values {
	return Values{
		ID:          p.ID,
		Name:        p.Name,
		Price:       strconv.FormatInt(p.Price, 10),
		Description: p.Description,
		Image:       p.Image,
	}
}

func (v Values) Candidate() product.Candidate {
	return product.Candidate{
		Name:        v.Name,
		Price:       v.Price,
		Description: v.Description,
		Image:       v.Image,
	}
}

func (v Values) Get(f product.Field) string {
	switch f {
	case product.FieldID:
		return strconv.FormatInt(v.ID, 10)
	case product.FieldName:
		return v.Name
	case product.FieldPrice:
		return v.Price
	case product.FieldDescription:
		return v.Description
	case product.FieldImage:
		return v.Image
	}
	return ""
}

func (v *Values) set(f product.Field, s string) {
	switch f {
	case product.FieldName:
		v.Name = s
	case product.FieldPrice:
		v.Price = s
	case product.FieldDescription:
		v.Description = s
	case product.FieldImage:
		v.Image = s
	}
}

type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Saver persists a submitted form.
type Saver interface {
	Create(ctx context.Context, f product.Fields) (product.Product, error)
	Update(ctx context.Context, id int64, f product.Fields) (product.Product, error)
}

// Form is the single create/edit form. Touched flags survive LoadForEdit
// and are cleared only by the reset that follows a submit.
type Form struct {
	saver  Saver
	notify Notifier

	mu         sync.Mutex
	values     Values
	touched    map[product.Field]bool
	errs       product.FieldErrors
	submitting bool
	submitID   int64
}

func NewForm(saver Saver, notify Notifier) *Form {
	f := &Form{saver: saver, notify: notify}
	f.resetLocked()
	return f
}

func (f *Form) resetLocked() {
	f.values = DefaultValues()
	f.touched = map[product.Field]bool{}
	f.errs = product.Validate(f.values.Candidate())
}

// LoadForEdit copies p into the inputs.
func (f *Form) LoadForEdit(p product.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = valuesOf(p)
	f.errs = product.Validate(f.values.Candidate())
}

// SetField stores one input value, marks it touched and revalidates the
// whole record.
func (f *Form) SetField(field product.Field, value string) error {
	switch field {
	case product.FieldName, product.FieldPrice, product.FieldDescription, product.FieldImage:
	case product.FieldID:
		return fmt.Errorf("%w: %s", ErrReadOnlyField, field)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.values.set(field, value)
	f.touched[field] = true
	f.errs = product.Validate(f.values.Candidate())
	return nil
}

// Submit validates the record and, when it is clean, updates the product
// the form was loaded with or creates a new one. Once the save settles the
// acknowledgment is shown and the form goes back to its defaults, whether
// the save succeeded or not; the save error is returned.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}

	for _, fld := range product.EditableFields {
		f.touched[fld] = true
	}
	f.errs = product.Validate(f.values.Candidate())
	if len(f.errs) > 0 {
		err := &ValidationError{Fields: cloneErrors(f.errs)}
		f.mu.Unlock()
		return err
	}

	v := f.values
	price, err := product.ParsePrice(v.Price)
	if err != nil {
		f.errs[product.FieldPrice] = product.MsgPriceNotNumber
		verr := &ValidationError{Fields: cloneErrors(f.errs)}
		f.mu.Unlock()
		return verr
	}
	f.submitting = true
	f.submitID = v.ID
	f.mu.Unlock()

	fields := product.Fields{
		Name:        v.Name,
		Price:       price,
		Description: v.Description,
		Image:       v.Image,
	}

	var saveErr error
	if v.ID != 0 {
		_, saveErr = f.saver.Update(ctx, v.ID, fields)
	} else {
		_, saveErr = f.saver.Create(ctx, fields)
	}

	f.notify.Notify(MsgSubmitted)

	f.mu.Lock()
	f.resetLocked()
	f.submitting = false
	f.submitID = 0
	f.mu.Unlock()

	return saveErr
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Form) stateLocked() State {
	switch {
	case f.submitting:
		return StateSubmitting
	case f.values.ID != 0:
		return StateEditing
	}
	return StateIdle
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns every current failure, touched or not.
func (f *Form) Errors() product.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneErrors(f.errs)
}

func (f *Form) Touched(field product.Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[field]
}

// FormView is what the page renders for the form.
type FormView struct {
	Values Values
	// Errors holds only the failures of touched fields.
	Errors   product.FieldErrors
	State    State
	Creating bool
	Updating bool
}

func (f *Form) View() FormView {
	f.mu.Lock()
	defer f.mu.Unlock()

	visible := product.FieldErrors{}
	for fld, msg := range f.errs {
		if f.touched[fld] {
			visible[fld] = msg
		}
	}

	return FormView{
		Values:   f.values,
		Errors:   visible,
		State:    f.stateLocked(),
		Creating: f.submitting && f.submitID == 0,
		Updating: f.submitting && f.submitID != 0,
	}
}

func cloneErrors(in product.FieldErrors) product.FieldErrors {
	out := make(product.FieldErrors, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
