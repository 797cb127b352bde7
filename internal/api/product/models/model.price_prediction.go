package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricePrediction bản lưu một lần dự đoán giá, tự xóa khi tới ExpiresAt (TTL index)
type PricePrediction struct {
	ID              primitive.ObjectID       `json:"id,omitempty" bson:"_id,omitempty"`
	ProductID       primitive.ObjectID       `json:"productId" bson:"productId" index:"single"`
	MLProductID     string                   `json:"mlProductId" bson:"mlProductId"`
	PredictionDate  time.Time                `json:"predictionDate" bson:"predictionDate" index:"single,order:-1"`
	CurrentMetrics  PredictionMetrics        `json:"currentMetrics" bson:"currentMetrics"`
	Recommendations PredictionRecommendation `json:"recommendations" bson:"recommendations"`
	Algorithm       PredictionAlgorithm      `json:"algorithm" bson:"algorithm"`
	Impact          PredictionImpact         `json:"impact" bson:"impact"`
	Raw             map[string]interface{}   `json:"raw,omitempty" bson:"raw,omitempty"`
	RequestedBy     primitive.ObjectID       `json:"requestedBy,omitempty" bson:"requestedBy,omitempty"`
	ExpiresAt       time.Time                `json:"expiresAt" bson:"expiresAt" index:"ttl:0"`
	CreatedAt       int64                    `json:"createdAt" bson:"createdAt"`
	UpdatedAt       int64                    `json:"updatedAt" bson:"updatedAt"`
}

// PredictionMetrics trạng thái sản phẩm lúc gọi dự đoán
type PredictionMetrics struct {
	Price        float64 `json:"price" bson:"price"`
	StockLevel   float64 `json:"stockLevel" bson:"stockLevel"`
	DaysToExpiry int     `json:"daysToExpiry" bson:"daysToExpiry"`
}

// PredictionRecommendation giá đề xuất
type PredictionRecommendation struct {
	OptimalPrice    float64 `json:"optimalPrice" bson:"optimalPrice"`
	ConfidenceScore float64 `json:"confidenceScore" bson:"confidenceScore"`
}

// PredictionAlgorithm phiên bản mô hình
type PredictionAlgorithm struct {
	Version string `json:"version,omitempty" bson:"version,omitempty"`
}

// PredictionImpact tác động dự kiến, nil khi dịch vụ không trả về
type PredictionImpact struct {
	SellThroughRate *float64 `json:"sellThroughRate,omitempty" bson:"sellThroughRate,omitempty"`
	WasteReduction  *float64 `json:"wasteReduction,omitempty" bson:"wasteReduction,omitempty"`
}
