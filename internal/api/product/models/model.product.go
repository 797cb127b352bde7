// Package models - model sản phẩm dễ hư hỏng và lịch sử giá thuộc domain product.
package models

import (
	"time"

	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái sản phẩm
const (
	StatusActive       = "active"
	StatusLowStock     = "low-stock"
	StatusExpiringSoon = "expiring-soon"
	StatusExpired      = "expired"
	StatusDiscontinued = "discontinued"
)

// ProductStatuses danh sách trạng thái hợp lệ
var ProductStatuses = []string{StatusActive, StatusLowStock, StatusExpiringSoon, StatusExpired, StatusDiscontinued}

// Lý do thay đổi giá
const (
	PriceReasonMLOptimize = "ml_optimize"
)

// Product một mặt hàng dễ hư hỏng thuộc một cửa hàng.
// Các field dẫn xuất (profitMargin, shelfLife, daysToExpiry, status) luôn được tính lại trước khi ghi.
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SKU         string             `json:"sku,omitempty" bson:"sku,omitempty" index:"unique,sparse"`
	StoreID     primitive.ObjectID `json:"storeId,omitempty" bson:"storeId,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Category    string             `json:"category" bson:"category"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`

	Pricing    Pricing    `json:"pricing" bson:"pricing"`
	Stock      Stock      `json:"stock" bson:"stock"`
	Perishable Perishable `json:"perishable" bson:"perishable"`
	AIMetrics  AIMetrics  `json:"aiMetrics" bson:"aiMetrics"`
	Sales      Sales      `json:"sales" bson:"sales"`

	Status  string `json:"status" bson:"status" index:"single"`
	Version int64  `json:"version" bson:"version"` // Tăng sau mỗi lần ghi, dùng cho compare-and-swap

	CreatedBy primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}

// Pricing thông tin giá
type Pricing struct {
	CostPrice     float64             `json:"costPrice" bson:"costPrice"`
	MRP           float64             `json:"mrp" bson:"mrp"`
	CurrentPrice  float64             `json:"currentPrice" bson:"currentPrice"`
	ProfitMargin  float64             `json:"profitMargin" bson:"profitMargin"`
	PreviousPrice *float64            `json:"previousPrice,omitempty" bson:"previousPrice,omitempty"`
	PriceHistory  []PriceHistoryEntry `json:"priceHistory" bson:"priceHistory"` // Mới nhất đứng đầu
}

// PriceHistoryEntry một lần đổi giá, Price là giá bị thay thế
type PriceHistoryEntry struct {
	Price     float64                `json:"price" bson:"price"`
	ChangedAt time.Time              `json:"changedAt" bson:"changedAt"`
	Reason    string                 `json:"reason" bson:"reason"`
	Meta      map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Stock tồn kho
type Stock struct {
	Quantity     float64 `json:"quantity" bson:"quantity"`
	Unit         string  `json:"unit" bson:"unit"`
	ReorderLevel float64 `json:"reorderLevel" bson:"reorderLevel"`
}

// Perishable hạn sử dụng
type Perishable struct {
	ManufactureDate *time.Time `json:"manufactureDate,omitempty" bson:"manufactureDate,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty" bson:"expiryDate,omitempty"`
	ShelfLife       int        `json:"shelfLife" bson:"shelfLife"`
	DaysToExpiry    int        `json:"daysToExpiry" bson:"daysToExpiry"`
}

// Sales số liệu bán hàng tích lũy
type Sales struct {
	TotalSold         float64    `json:"totalSold" bson:"totalSold"`
	TotalRevenue      float64    `json:"totalRevenue" bson:"totalRevenue"`
	AverageDailySales float64    `json:"averageDailySales" bson:"averageDailySales"`
	LastSaleDate      *time.Time `json:"lastSaleDate,omitempty" bson:"lastSaleDate,omitempty"`
}

// AIMetrics dữ liệu từ dịch vụ dự đoán giá
type AIMetrics struct {
	MLProductID        string                 `json:"mlProductId,omitempty" bson:"mlProductId,omitempty"`
	DemandScore        float64                `json:"demandScore" bson:"demandScore"`
	SpoilageRisk       string                 `json:"spoilageRisk" bson:"spoilageRisk"`
	RecommendedPrice   float64                `json:"recommendedPrice" bson:"recommendedPrice"`
	ConfidenceScore    float64                `json:"confidenceScore" bson:"confidenceScore"`
	ModelVersion       string                 `json:"modelVersion,omitempty" bson:"modelVersion,omitempty"`
	LastPredictionDate *time.Time             `json:"lastPredictionDate,omitempty" bson:"lastPredictionDate,omitempty"`
	LastOptimizedAt    *time.Time             `json:"lastOptimizedAt,omitempty" bson:"lastOptimizedAt,omitempty"`
	LastOptimization   map[string]interface{} `json:"lastOptimization,omitempty" bson:"lastOptimization,omitempty"`
}

// FormattedPrice giá hiện tại dạng $0.00
func (p *Product) FormattedPrice() string {
	return utility.FormatMoney(p.Pricing.CurrentPrice)
}

// StockStatus nhãn tồn kho hiển thị
func (p *Product) StockStatus() string {
	switch {
	case p.Stock.Quantity == 0:
		return "Out of Stock"
	case p.Stock.Quantity <= p.Stock.ReorderLevel:
		return "Low Stock"
	default:
		return "In Stock"
	}
}
