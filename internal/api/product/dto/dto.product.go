// Package productdto - input/output của API sản phẩm.
package productdto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
)

// PricingInput giá. Cả ba giá bắt buộc khi gửi khối pricing.
type PricingInput struct {
	CostPrice    *float64 `json:"costPrice" validate:"required,gte=0"`
	MRP          *float64 `json:"mrp" validate:"required,gte=0"`
	CurrentPrice *float64 `json:"currentPrice" validate:"required,gte=0"`
}

// StockInput tồn kho
type StockInput struct {
	Quantity     *float64 `json:"quantity" validate:"required,gte=0"`
	Unit         string   `json:"unit" validate:"omitempty,product_unit"`
	ReorderLevel *float64 `json:"reorderLevel" validate:"omitempty,gte=0"`
}

// PerishableInput ngày sản xuất/hết hạn, RFC 3339 hoặc YYYY-MM-DD
type PerishableInput struct {
	ManufactureDate string `json:"manufactureDate" validate:"required"`
	ExpiryDate      string `json:"expiryDate" validate:"required"`
}

// AIMetricsInput các field AI người dùng được phép đặt
type AIMetricsInput struct {
	MLProductID        *string  `json:"mlProductId" validate:"omitempty,max=100,no_xss"`
	DemandScore        *float64 `json:"demandScore" validate:"omitempty,gte=0,lte=100"`
	SpoilageRisk       *string  `json:"spoilageRisk" validate:"omitempty,spoilage_risk"`
	RecommendedPrice   *float64 `json:"recommendedPrice" validate:"omitempty,gte=0"`
	LastPredictionDate *string  `json:"lastPredictionDate"`
}

// SalesInput số liệu bán hàng
type SalesInput struct {
	TotalSold         *float64 `json:"totalSold" validate:"omitempty,gte=0"`
	TotalRevenue      *float64 `json:"totalRevenue" validate:"omitempty,gte=0"`
	AverageDailySales *float64 `json:"averageDailySales" validate:"omitempty,gte=0"`
	LastSaleDate      *string  `json:"lastSaleDate"`
}

// ProductCreateInput tạo sản phẩm
type ProductCreateInput struct {
	StoreID     string           `json:"storeId" validate:"omitempty,mongodb"`
	SKU         string           `json:"sku" validate:"omitempty,max=64,no_xss"`
	Name        string           `json:"name" validate:"required,min=1,max=200,no_xss"`
	Category    string           `json:"category" validate:"required,product_category"`
	Description string           `json:"description" validate:"omitempty,max=1000,no_xss"`
	Image       string           `json:"image" validate:"omitempty,url"`
	Pricing     *PricingInput    `json:"pricing" validate:"required"`
	Stock       *StockInput      `json:"stock" validate:"required"`
	Perishable  *PerishableInput `json:"perishable" validate:"required"`
	AIMetrics   *AIMetricsInput  `json:"aiMetrics"`
	Sales       *SalesInput      `json:"sales"`
	Status      string           `json:"status" validate:"omitempty,oneof=active low-stock expiring-soon expired discontinued"`
}

// ProductUpdateInput cập nhật một phần, field nil thì giữ nguyên
type ProductUpdateInput struct {
	StoreID     *string          `json:"storeId" validate:"omitempty,mongodb"`
	SKU         *string          `json:"sku" validate:"omitempty,max=64,no_xss"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200,no_xss"`
	Category    *string          `json:"category" validate:"omitempty,product_category"`
	Description *string          `json:"description" validate:"omitempty,max=1000,no_xss"`
	Image       *string          `json:"image" validate:"omitempty,url"`
	Pricing     *PricingInput    `json:"pricing"`
	Stock       *StockInput      `json:"stock"`
	Perishable  *PerishableInput `json:"perishable"`
	AIMetrics   *AIMetricsInput  `json:"aiMetrics"`
	Sales       *SalesInput      `json:"sales"`
	Status      *string          `json:"status" validate:"omitempty,oneof=active low-stock expiring-soon expired discontinued"`
}

// Các phép thay đổi tồn kho
const (
	StockOpInc = "inc"
	StockOpDec = "dec"
	StockOpSet = "set"
)

// StockUpdateInput thay đổi tồn kho. Amount nhận số hoặc chuỗi số.
type StockUpdateInput struct {
	Op     string      `json:"op"`
	Amount interface{} `json:"amount"`
}

// ParseAmount đọc Amount, false nếu không phải số hữu hạn >= 0
func (in *StockUpdateInput) ParseAmount() (float64, bool) {
	var v float64
	switch a := in.Amount.(type) {
	case json.Number:
		f, err := a.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case float64:
		v = a
	case int:
		v = float64(a)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// ListQuery tham số lọc/sắp xếp danh sách sản phẩm
type ListQuery struct {
	Page      int64
	Limit     int64
	Search    string
	Category  string
	Status    string
	StoreID   string
	SortBy    string
	SortOrder string
}

// ProductResponse sản phẩm kèm các field hiển thị
type ProductResponse struct {
	models.Product
	FormattedPrice string `json:"formattedPrice"`
	StockStatus    string `json:"stockStatus"`
}

// NewProductResponse gắn formattedPrice và stockStatus
func NewProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Product:        p,
		FormattedPrice: p.FormattedPrice(),
		StockStatus:    p.StockStatus(),
	}
}

// NewProductResponses áp dụng NewProductResponse cho cả danh sách
func NewProductResponses(items []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewProductResponse(p))
	}
	return out
}

// DeleteResult kết quả xóa. Product nil khi xóa hẳn.
type DeleteResult struct {
	Permanent bool             `json:"permanent"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// OptimizeSummary tóm tắt kết quả từ dịch vụ dự đoán
type OptimizeSummary struct {
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
	ModelVersion    string   `json:"modelVersion,omitempty"`
	SellThroughRate *float64 `json:"sellThroughRate,omitempty"`
	WasteReduction  *float64 `json:"wasteReduction,omitempty"`
}

// OptimizeResult kết quả tối ưu giá
type OptimizeResult struct {
	ProductID     string          `json:"productId"`
	MLProductID   string          `json:"mlProductId"`
	OldPrice      float64         `json:"oldPrice"`
	NewPrice      float64         `json:"newPrice"`
	HistoryPushed bool            `json:"historyPushed"`
	Summary       OptimizeSummary `json:"summary"`
}
