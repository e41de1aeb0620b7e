package product

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Candidate is the raw form record. Price is kept in the string form the
// user typed it in.
type Candidate struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Price       string `json:"price" validate:"required,numeric,integral,atleastone"`
	Description string `json:"description" validate:"required,min=10,max=255"`
	Image       string `json:"image" validate:"required,min=10,max=255"`
}

// FieldErrors maps each failing field to a message fit for display.
// Passing fields have no entry.
type FieldErrors map[Field]string

func (e FieldErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

var ErrInvalidPrice = errors.New("invalid price")

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		return name
	})
	_ = validate.RegisterValidation("integral", func(fl validator.FieldLevel) bool {
		_, err := ParsePrice(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("atleastone", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && f >= 1
	})
}

const MsgPriceNotNumber = "Product price must be a number!"

var messages = map[Field]map[string]string{
	FieldName: {
		"required": "Product name is required!",
		"min":      "Product name must be longer than 2 characters!",
		"max":      "Product name must be shorter than 50 characters!",
	},
	FieldPrice: {
		"required":   "Product price is required!",
		"numeric":    MsgPriceNotNumber,
		"integral":   MsgPriceNotNumber,
		"atleastone": "Product price must be greater than 0!",
	},
	FieldDescription: {
		"required": "Product description is required!",
		"min":      "Product description must be longer than 10 characters!",
		"max":      "Product description must be shorter than 255 characters!",
	},
	FieldImage: {
		"required": "Product image URL is required!",
		"min":      "Product image URL must be longer than 10 characters!",
		"max":      "Product image URL must be shorter than 255 characters!",
	},
}

// Validate checks every field of c and returns the failures. It never
// returns nil; an empty map means c is valid.
func Validate(c Candidate) FieldErrors {
	c.Price = strings.TrimSpace(c.Price)

	out := FieldErrors{}
	err := validate.Struct(c)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable with a broken tag; surface it on every field.
		for _, f := range EditableFields {
			out[f] = err.Error()
		}
		return out
	}

	for _, fe := range verrs {
		f := Field(fe.Field())
		if _, seen := out[f]; seen {
			continue
		}
		out[f] = message(f, fe)
	}
	return out
}

func message(f Field, fe validator.FieldError) string {
	if m, ok := messages[f][fe.Tag()]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", f)
}

// ParsePrice converts a form price into its integer value. "5", " 5 " and
// "5.0" all yield 5. Values outside the int64 range are rejected.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if hasFrac && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return n, nil
}
