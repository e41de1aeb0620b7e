package product_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductDesk/internal/product"
)

func validCandidate() product.Candidate {
	return product.Candidate{
		Name:        "Pen",
		Price:       "5",
		Description: "A fine writing pen",
		Image:       "https://img.example/pen.png",
	}
}

func TestValidate_ValidCandidateHasNoErrors(t *testing.T) {
	errs := product.Validate(validCandidate())
	require.NotNil(t, errs)
	assert.Empty(t, errs)
}

func TestValidate_NameLength(t *testing.T) {
	cases := []struct {
		name    string
		wantErr string
	}{
		{"", "Product name is required!"},
		{"A", "Product name must be longer than 2 characters!"},
		{"Ab", ""},
		{strings.Repeat("x", 50), ""},
		{strings.Repeat("x", 51), "Product name must be shorter than 50 characters!"},
		{"Ünï", ""},
	}

	for _, tc := range cases {
		c := validCandidate()
		c.Name = tc.name

		errs := product.Validate(c)
		if tc.wantErr == "" {
			assert.False(t, errs.Has(product.FieldName), "name %q: %v", tc.name, errs)
			continue
		}
		assert.Equal(t, tc.wantErr, errs[product.FieldName], "name %q", tc.name)
	}
}

func TestValidate_Price(t *testing.T) {
	cases := []struct {
		price   string
		wantErr string
	}{
		{"", "Product price is required!"},
		{"abc", "Product price must be a number!"},
		{"5.5", "Product price must be a number!"},
		{"0", "Product price must be greater than 0!"},
		{"-3", "Product price must be greater than 0!"},
		{"1", ""},
		{" 42 ", ""},
		{"7.0", ""},
		{"1000000", ""},
		{"9223372036854775807", ""},
		{"9223372036854775808", "Product price must be a number!"},
		{"99999999999999999999", "Product price must be a number!"},
		{"9223372036854775808.0", "Product price must be a number!"},
	}

	for _, tc := range cases {
		c := validCandidate()
		c.Price = tc.price

		errs := product.Validate(c)
		if tc.wantErr == "" {
			assert.False(t, errs.Has(product.FieldPrice), "price %q: %v", tc.price, errs)
			continue
		}
		assert.Equal(t, tc.wantErr, errs[product.FieldPrice], "price %q", tc.price)
	}
}

func TestValidate_DescriptionAndImageBounds(t *testing.T) {
	c := validCandidate()
	c.Description = "too short"
	c.Image = strings.Repeat("i", 256)

	errs := product.Validate(c)
	assert.Equal(t, "Product description must be longer than 10 characters!", errs[product.FieldDescription])
	assert.Equal(t, "Product image URL must be shorter than 255 characters!", errs[product.FieldImage])
	assert.Len(t, errs, 2)
}

func TestValidate_ImageIsNotCheckedAsURL(t *testing.T) {
	c := validCandidate()
	c.Image = "not a url at all"

	assert.Empty(t, product.Validate(c))
}

func TestValidate_EmptyCandidateReportsEveryField(t *testing.T) {
	errs := product.Validate(product.Candidate{})

	assert.Equal(t, product.FieldErrors{
		product.FieldName:        "Product name is required!",
		product.FieldPrice:       "Product price is required!",
		product.FieldDescription: "Product description is required!",
		product.FieldImage:       "Product image URL is required!",
	}, errs)
}

func TestParsePrice(t *testing.T) {
	for in, want := range map[string]int64{"5": 5, " 12 ": 12, "3.0": 3} {
		got, err := product.ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "x", "2.5", "5.", "9223372036854775808", "99999999999999999999", "1e3"} {
		_, err := product.ParsePrice(in)
		assert.ErrorIs(t, err, product.ErrInvalidPrice, in)
	}
}
