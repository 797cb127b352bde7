package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductVirtuals(t *testing.T) {
	p := &Product{Pricing: Pricing{CurrentPrice: 2.5}, Stock: Stock{Quantity: 0, ReorderLevel: 10}}
	assert.Equal(t, "$2.50", p.FormattedPrice())
	assert.Equal(t, "Out of Stock", p.StockStatus())

	p.Stock.Quantity = 10
	assert.Equal(t, "Low Stock", p.StockStatus())

	p.Stock.Quantity = 10.5
	assert.Equal(t, "In Stock", p.StockStatus())
}
