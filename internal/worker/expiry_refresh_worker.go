// Package worker chứa các tác vụ nền chạy định kỳ.
package worker

import (
	"context"
	"errors"
	"time"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	productsvc "github.com/KraitOPP/PerishPro-sub000/internal/api/product/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExpiryStore phần ProductStore mà worker cần
type ExpiryStore interface {
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Product, error)
	ReplaceVersioned(ctx context.Context, p models.Product) (models.Product, error)
}

// ExpiryRefreshWorker tính lại daysToExpiry/status của sản phẩm khi ngày trôi qua.
// Sản phẩm discontinued bị bỏ qua. Xung đột version bỏ qua, lần chạy sau sẽ xử lý lại.
type ExpiryRefreshWorker struct {
	store     ExpiryStore
	interval  time.Duration // Khoảng thời gian giữa các lần chạy
	batchSize int           // Số sản phẩm đọc mỗi lần
	now       func() time.Time
}

// NewExpiryRefreshWorker tạo worker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (tối thiểu 1 phút, mặc định: 60 phút)
//   - batchSize: Số sản phẩm mỗi batch (mặc định: 200)
func NewExpiryRefreshWorker(store ExpiryStore, interval time.Duration, batchSize int) *ExpiryRefreshWorker {
	if interval < time.Minute {
		interval = 60 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ExpiryRefreshWorker{
		store:     store,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Start chạy một lượt ngay rồi lặp theo interval cho tới khi ctx bị hủy
func (w *ExpiryRefreshWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
	}).Info("[EXPIRY_REFRESH] Starting expiry refresh worker...")

	w.runSafe(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("[EXPIRY_REFRESH] Expiry refresh worker stopped")
			return
		case <-ticker.C:
			w.runSafe(ctx)
		}
	}
}

func (w *ExpiryRefreshWorker) runSafe(ctx context.Context) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("[EXPIRY_REFRESH] Panic khi làm mới sản phẩm, sẽ tiếp tục ở lần chạy tiếp theo")
		}
	}()

	updated, err := w.RunOnce(ctx)
	if err != nil {
		log.WithError(err).Error("[EXPIRY_REFRESH] Lỗi đọc danh sách sản phẩm")
		return
	}
	if updated > 0 {
		log.WithField("updated", updated).Info("[EXPIRY_REFRESH] Đã làm mới sản phẩm")
	}
}

// RunOnce duyệt toàn bộ sản phẩm chưa discontinued theo _id tăng dần, ghi lại bản nào có thay đổi.
// Trả về số sản phẩm đã ghi.
func (w *ExpiryRefreshWorker) RunOnce(ctx context.Context) (int, error) {
	log := logger.GetAppLogger()
	now := w.now()
	updated := 0
	lastID := primitive.NilObjectID

	for {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		filter := bson.M{"status": bson.M{"$ne": models.StatusDiscontinued}}
		if !lastID.IsZero() {
			filter["_id"] = bson.M{"$gt": lastID}
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetLimit(int64(w.batchSize))

		batch, err := w.store.Find(ctx, filter, opts)
		if err != nil {
			return updated, err
		}

		for _, p := range batch {
			lastID = p.ID
			before := p
			productsvc.DeriveFields(&p, now)
			if !changed(before, p) {
				continue
			}
			if _, err := w.store.ReplaceVersioned(ctx, p); err != nil {
				if !errors.Is(err, common.ErrVersionConflict) {
					log.WithError(err).WithField("product_id", p.ID.Hex()).
						Warn("[EXPIRY_REFRESH] Ghi sản phẩm thất bại, bỏ qua")
				}
				continue
			}
			updated++
		}

		if len(batch) < w.batchSize {
			return updated, nil
		}
	}
}

func changed(before, after models.Product) bool {
	return before.Status != after.Status ||
		before.Perishable.DaysToExpiry != after.Perishable.DaysToExpiry ||
		before.Perishable.ShelfLife != after.Perishable.ShelfLife ||
		before.Pricing.ProfitMargin != after.Pricing.ProfitMargin
}
