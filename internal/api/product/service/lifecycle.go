package productsvc

import (
	"math"
	"time"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
)

// Ngưỡng (ngày) để coi là sắp hết hạn
const ExpiringSoonDays = 3

const day = 24 * time.Hour

// CeilDays số ngày làm tròn lên giữa from và to, không âm
func CeilDays(from, to time.Time) int {
	days := int(math.Ceil(float64(to.Sub(from)) / float64(day)))
	if days < 0 {
		return 0
	}
	return days
}

// DeriveFields tính lại profitMargin, shelfLife, daysToExpiry và status.
// Gọi trước mọi lần ghi sản phẩm.
func DeriveFields(p *models.Product, now time.Time) {
	if p.Pricing.CostPrice > 0 {
		p.Pricing.ProfitMargin = (p.Pricing.CurrentPrice - p.Pricing.CostPrice) / p.Pricing.CostPrice * 100
	} else {
		p.Pricing.ProfitMargin = 0
	}

	per := &p.Perishable
	if per.ManufactureDate != nil && per.ExpiryDate != nil {
		per.ShelfLife = CeilDays(*per.ManufactureDate, *per.ExpiryDate)
	}
	if per.ExpiryDate != nil {
		per.DaysToExpiry = CeilDays(now, *per.ExpiryDate)
	}

	p.Status = deriveStatus(p)
}

// deriveStatus: expired > expiring-soon > low-stock > discontinued > active
func deriveStatus(p *models.Product) string {
	if p.Perishable.ExpiryDate != nil {
		switch {
		case p.Perishable.DaysToExpiry <= 0:
			return models.StatusExpired
		case p.Perishable.DaysToExpiry <= ExpiringSoonDays:
			return models.StatusExpiringSoon
		}
	}
	if p.Stock.Quantity <= p.Stock.ReorderLevel {
		return models.StatusLowStock
	}
	if p.Status == models.StatusDiscontinued {
		return models.StatusDiscontinued
	}
	return models.StatusActive
}
