package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Short!1":       false,
		"alllowercase!": false,
		"NoSpecial123":  false,
		"Fresh#Milk":    true,
		"Abcdefg$":      true,
	}
	for pw, want := range cases {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

type sample struct {
	Category string `json:"category" validate:"required,product_category"`
	Unit     string `json:"unit" validate:"omitempty,product_unit"`
	Risk     string `json:"spoilageRisk" validate:"omitempty,spoilage_risk"`
	Note     string `json:"note" validate:"no_xss"`
}

func TestCustomProductRules(t *testing.T) {
	InitValidator()

	assert.NoError(t, Validate.Struct(sample{Category: "Dairy", Unit: "kg", Risk: "high"}))

	err := Validate.Struct(sample{Category: "Toys"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "category")
	}
	assert.Error(t, Validate.Struct(sample{Category: "Meat", Unit: "crate"}))
	assert.Error(t, Validate.Struct(sample{Category: "Meat", Risk: "extreme"}))
	assert.Error(t, Validate.Struct(sample{Category: "Meat", Note: "<script>alert(1)</script>"}))
}
