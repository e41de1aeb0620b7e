package product

// Product is a record as the remote API stores it. ID 0 means the product
// has not been persisted yet.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Fields is a product without its identifier, as sent on create.
type Fields struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (p Product) Fields() Fields {
	return Fields{
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
	}
}

func (f Fields) WithID(id int64) Product {
	return Product{
		ID:          id,
		Name:        f.Name,
		Price:       f.Price,
		Description: f.Description,
		Image:       f.Image,
	}
}

func (p Product) Persisted() bool { return p.ID != 0 }

// Field names a form input.
type Field string

const (
	FieldID          Field = "id"
	FieldName        Field = "name"
	FieldPrice       Field = "price"
	FieldDescription Field = "description"
	FieldImage       Field = "image"
)

// EditableFields lists the inputs a user can type into, in page order.
var EditableFields = []Field{FieldName, FieldPrice, FieldDescription, FieldImage}

func ParseField(s string) (Field, bool) {
	switch f := Field(s); f {
	case FieldID, FieldName, FieldPrice, FieldDescription, FieldImage:
		return f, true
	}
	return "", false
}
