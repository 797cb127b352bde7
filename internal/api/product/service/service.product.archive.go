package productsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "github.com/KraitOPP/PerishPro-sub000/internal/api/base/service"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PredictionRetention thời gian giữ tối đa một bản dự đoán
const PredictionRetention = 7 * 24 * time.Hour

// PredictionArchive lưu lại các lần dự đoán giá
type PredictionArchive interface {
	Archive(ctx context.Context, p *models.PricePrediction) error
	ListByProduct(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.PricePrediction, error)
}

// PredictionExpiry min(now+7 ngày, now+daysToExpiry ngày)
func PredictionExpiry(now time.Time, daysToExpiry int) time.Time {
	retention := PredictionRetention
	if byExpiry := time.Duration(daysToExpiry) * day; byExpiry < retention {
		retention = byExpiry
	}
	return now.Add(retention)
}

// MongoPredictionArchive PredictionArchive trên collection price_predictions
type MongoPredictionArchive struct {
	*basesvc.BaseServiceMongoImpl[models.PricePrediction]
}

// NewMongoPredictionArchive bọc base service của collection price_predictions
func NewMongoPredictionArchive(base *basesvc.BaseServiceMongoImpl[models.PricePrediction]) *MongoPredictionArchive {
	return &MongoPredictionArchive{BaseServiceMongoImpl: base}
}

// NewMongoPredictionArchiveFromRegistry lấy collection price_predictions từ registry
func NewMongoPredictionArchiveFromRegistry() (*MongoPredictionArchive, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.PricePredictions)
	if !exist {
		return nil, fmt.Errorf("failed to get price_predictions collection: %v", common.ErrNotFound)
	}
	return NewMongoPredictionArchive(basesvc.NewBaseServiceMongo[models.PricePrediction](collection)), nil
}

// Archive lưu bản dự đoán
func (a *MongoPredictionArchive) Archive(ctx context.Context, p *models.PricePrediction) error {
	_, err := a.InsertOne(ctx, *p)
	return err
}

// ListByProduct các bản dự đoán của sản phẩm, mới nhất trước
func (a *MongoPredictionArchive) ListByProduct(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.PricePrediction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "predictionDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return a.Find(ctx, bson.M{"productId": productID}, opts)
}
