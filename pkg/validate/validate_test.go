package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/vyapar/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"nullable,in=CUSTOMER,ADMIN"`
}

func TestStructPassesValidInput(t *testing.T) {
	errs := validate.Struct(&registerInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "supersecret",
		Role:     "CUSTOMER",
	})
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestStructRequired(t *testing.T) {
	errs := validate.Struct(&registerInput{})
	assert.Equal(t, "is required", errs["name"])
	assert.Equal(t, "is required", errs["email"])
	assert.Equal(t, "is required", errs["password"])
}

func TestStructEmail(t *testing.T) {
	errs := validate.Struct(&registerInput{Name: "Asha", Email: "not-an-email", Password: "supersecret"})
	assert.Equal(t, "must be a valid email address", errs["email"])
}

func TestStructNullableSkipsRemainingRules(t *testing.T) {
	errs := validate.Struct(&registerInput{Name: "Asha", Email: "asha@example.com", Password: "supersecret"})
	_, present := errs["role"]
	assert.False(t, present, "empty nullable field must not error")
}

func TestStructIn(t *testing.T) {
	errs := validate.Struct(&registerInput{
		Name: "Asha", Email: "asha@example.com", Password: "supersecret", Role: "ROOT",
	})
	assert.Equal(t, "must be one of: CUSTOMER, ADMIN", errs["role"])
}

func TestStructNumericBounds(t *testing.T) {
	type orderItem struct {
		Quantity int `json:"quantity" validate:"required,gt=0"`
	}

	errs := validate.Struct(&orderItem{Quantity: 0})
	assert.Equal(t, "is required", errs["quantity"])

	errs = validate.Struct(&orderItem{Quantity: -2})
	assert.Equal(t, "must be greater than 0", errs["quantity"])

	errs = validate.Struct(&orderItem{Quantity: 3})
	assert.Empty(t, errs)
}

func TestStructSliceMin(t *testing.T) {
	type createOrder struct {
		Items []int `json:"items" validate:"required,min=1"`
	}

	errs := validate.Struct(&createOrder{})
	assert.Equal(t, "is required", errs["items"])

	errs = validate.Struct(&createOrder{Items: []int{1}})
	assert.Empty(t, errs)
}
