package productsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	productdto "github.com/KraitOPP/PerishPro-sub000/internal/api/product/dto"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
	"github.com/KraitOPP/PerishPro-sub000/internal/mlclient"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPriceHistoryLimit số mục lịch sử giá giữ lại
const DefaultPriceHistoryLimit = 20

// Predictor nguồn giá đề xuất (dịch vụ ML)
type Predictor interface {
	Predict(ctx context.Context, in mlclient.PredictRequest) (*mlclient.Prediction, error)
}

// PriceOptimizer áp giá đề xuất từ dịch vụ ML vào sản phẩm
type PriceOptimizer struct {
	store        ProductStore
	predictor    Predictor
	archive      PredictionArchive // nil thì không lưu bản dự đoán
	historyLimit int
	now          func() time.Time
}

// NewPriceOptimizer tạo optimizer. historyLimit <= 0 thì dùng DefaultPriceHistoryLimit.
func NewPriceOptimizer(store ProductStore, predictor Predictor, archive PredictionArchive, historyLimit int) *PriceOptimizer {
	if historyLimit <= 0 {
		historyLimit = DefaultPriceHistoryLimit
	}
	return &PriceOptimizer{
		store:        store,
		predictor:    predictor,
		archive:      archive,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// OptimizePrice lấy giá đề xuất cho sản phẩm, cập nhật giá, lịch sử và aiMetrics trong một lần ghi CAS.
// Sản phẩm bị ghi bởi request khác trong lúc chờ dự đoán thì trả về 409, không retry.
func (o *PriceOptimizer) OptimizePrice(ctx context.Context, productID, userID primitive.ObjectID) (*productdto.OptimizeResult, error) {
	log := logger.WithContext(ctx).WithField("product_id", productID.Hex())

	p, err := o.store.FindOneById(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("Product not found")
		}
		return nil, err
	}

	mlID := strings.TrimSpace(p.AIMetrics.MLProductID)
	if mlID == "" {
		return nil, common.NewInvalidStateError("ML correlation id not set")
	}
	if p.Perishable.ExpiryDate == nil {
		return nil, common.NewInvalidStateError("expiry date missing")
	}

	now := o.now()
	daysToExpiry := p.Perishable.DaysToExpiry
	if daysToExpiry < 0 {
		daysToExpiry = CeilDays(now, *p.Perishable.ExpiryDate)
	}
	if daysToExpiry <= 0 {
		return nil, common.NewInvalidStateError("already expired")
	}

	pred, err := o.predictor.Predict(ctx, mlclient.PredictRequest{
		ProductID:    mlID,
		StockLevel:   p.Stock.Quantity,
		DaysToExpiry: daysToExpiry,
	})
	if err != nil {
		var appErr *common.Error
		if !errors.As(err, &appErr) {
			err = common.NewUpstreamError(common.StatusBadGateway, "Prediction service error", err.Error())
		}
		log.WithError(err).Warn("[OPTIMIZE] Prediction failed")
		return nil, err
	}

	oldPrice := utility.RoundMoney(p.Pricing.CurrentPrice)
	newPrice := utility.RoundMoney(pred.OptimalPrice)
	if newPrice < 0 {
		return nil, common.NewUpstreamError(common.StatusBadGateway, "invalid price", "negative optimal price")
	}

	historyPushed := newPrice != oldPrice
	if historyPushed {
		entry := models.PriceHistoryEntry{
			Price:     oldPrice,
			ChangedAt: now,
			Reason:    models.PriceReasonMLOptimize,
			Meta: map[string]interface{}{
				"correlationId": mlID,
				"daysToExpiry":  daysToExpiry,
				"stockLevel":    p.Stock.Quantity,
			},
		}
		p.Pricing.PriceHistory = PushPriceHistory(p.Pricing.PriceHistory, entry, o.historyLimit)
		prev := oldPrice
		p.Pricing.PreviousPrice = &prev
	}
	p.Pricing.CurrentPrice = newPrice

	predictionDate := now
	if pred.PredictionDate != nil {
		predictionDate = *pred.PredictionDate
	}
	optimizedAt := now
	p.AIMetrics.RecommendedPrice = newPrice
	if pred.ConfidenceScore != nil {
		p.AIMetrics.ConfidenceScore = *pred.ConfidenceScore
	}
	p.AIMetrics.ModelVersion = pred.ModelVersion
	p.AIMetrics.LastPredictionDate = &predictionDate
	p.AIMetrics.LastOptimizedAt = &optimizedAt
	p.AIMetrics.LastOptimization = pred.Raw
	if !userID.IsZero() {
		p.UpdatedBy = userID
	}

	DeriveFields(&p, now)
	saved, err := o.store.ReplaceVersioned(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			log.Warn("[OPTIMIZE] Product changed while waiting for prediction")
		}
		return nil, err
	}

	o.archivePrediction(ctx, &saved, pred, oldPrice, daysToExpiry, userID, now)

	log.WithFields(logrus.Fields{
		"old_price":      oldPrice,
		"new_price":      newPrice,
		"history_pushed": historyPushed,
	}).Info("[OPTIMIZE] Price optimized")

	return &productdto.OptimizeResult{
		ProductID:     saved.ID.Hex(),
		MLProductID:   mlID,
		OldPrice:      oldPrice,
		NewPrice:      newPrice,
		HistoryPushed: historyPushed,
		Summary: productdto.OptimizeSummary{
			ConfidenceScore: pred.ConfidenceScore,
			ModelVersion:    pred.ModelVersion,
			SellThroughRate: pred.SellThroughRate,
			WasteReduction:  pred.WasteReduction,
		},
	}, nil
}

// archivePrediction lỗi chỉ ghi log, không làm hỏng kết quả tối ưu
func (o *PriceOptimizer) archivePrediction(ctx context.Context, p *models.Product, pred *mlclient.Prediction, oldPrice float64, daysToExpiry int, userID primitive.ObjectID, now time.Time) {
	if o.archive == nil {
		return
	}
	record := &models.PricePrediction{
		ProductID:   p.ID,
		MLProductID: p.AIMetrics.MLProductID,
		CurrentMetrics: models.PredictionMetrics{
			Price:        oldPrice,
			StockLevel:   p.Stock.Quantity,
			DaysToExpiry: daysToExpiry,
		},
		Recommendations: models.PredictionRecommendation{
			OptimalPrice:    p.Pricing.CurrentPrice,
			ConfidenceScore: p.AIMetrics.ConfidenceScore,
		},
		Algorithm: models.PredictionAlgorithm{Version: pred.ModelVersion},
		Impact: models.PredictionImpact{
			SellThroughRate: pred.SellThroughRate,
			WasteReduction:  pred.WasteReduction,
		},
		PredictionDate: *p.AIMetrics.LastPredictionDate,
		Raw:            pred.Raw,
		RequestedBy:    userID,
		ExpiresAt:      PredictionExpiry(now, daysToExpiry),
	}
	if err := o.archive.Archive(ctx, record); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("product_id", p.ID.Hex()).
			Warn("[OPTIMIZE] Failed to archive prediction")
	}
}

// PushPriceHistory chèn entry lên đầu và cắt còn limit mục
func PushPriceHistory(history []models.PriceHistoryEntry, entry models.PriceHistoryEntry, limit int) []models.PriceHistoryEntry {
	out := make([]models.PriceHistoryEntry, 0, len(history)+1)
	out = append(out, entry)
	out = append(out, history...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
