package productsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	basemodels "github.com/KraitOPP/PerishPro-sub000/internal/api/base/models"
	productdto "github.com/KraitOPP/PerishPro-sub000/internal/api/product/dto"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/media"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Giá trị mặc định khi tạo sản phẩm
const (
	DefaultUnit         = "units"
	DefaultReorderLevel = 10
	DefaultDemandScore  = 50
	DefaultSpoilageRisk = "low"
)

// Số bản dự đoán trả về mặc định cho một sản phẩm
const DefaultPredictionListLimit = 20

// SortFields các field được phép sắp xếp
var SortFields = []string{
	"createdAt", "updatedAt", "name",
	"pricing.currentPrice", "stock.quantity",
	"perishable.expiryDate", "perishable.daysToExpiry",
}

var errProductNotFound = common.NewNotFoundError("Product not found")

// ImageUpload ảnh gửi kèm request multipart
type ImageUpload struct {
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ProductService CRUD, tồn kho, danh sách và xuất file sản phẩm
type ProductService struct {
	store    ProductStore
	uploader media.Uploader    // nil thì từ chối upload ảnh
	archive  PredictionArchive // nil thì danh sách dự đoán luôn rỗng
	now      func() time.Time
}

// NewProductService tạo ProductService
func NewProductService(store ProductStore, uploader media.Uploader, archive PredictionArchive) *ProductService {
	return &ProductService{store: store, uploader: uploader, archive: archive, now: time.Now}
}

func notFoundOr(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return errProductNotFound
	}
	return err
}

func conflictOr(err error) error {
	if errors.Is(err, common.ErrDuplicate) {
		return common.NewConflictError("Product with this SKU already exists")
	}
	return err
}

// Create tạo sản phẩm. storeId mặc định là user đang đăng nhập.
func (s *ProductService) Create(ctx context.Context, input *productdto.ProductCreateInput, image *ImageUpload, userID primitive.ObjectID) (*models.Product, error) {
	if err := checkImage(image); err != nil {
		return nil, err
	}

	p := models.Product{
		SKU:         normalizeSKU(input.SKU),
		StoreID:     userID,
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		Image:       input.Image,
		Pricing:     models.Pricing{PriceHistory: []models.PriceHistoryEntry{}},
		Stock: models.Stock{
			Unit:         DefaultUnit,
			ReorderLevel: DefaultReorderLevel,
		},
		AIMetrics: models.AIMetrics{
			DemandScore:  DefaultDemandScore,
			SpoilageRisk: DefaultSpoilageRisk,
		},
		Status:    input.Status,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
	if input.StoreID != "" {
		storeID, err := utility.ParseObjectID(input.StoreID)
		if err != nil {
			return nil, common.NewValidationError("Invalid storeId", nil)
		}
		p.StoreID = storeID
	}
	applyPricing(&p, input.Pricing)
	applyStock(&p, input.Stock)
	if err := applyPerishable(&p, input.Perishable); err != nil {
		return nil, err
	}
	if err := applyAIMetrics(&p, input.AIMetrics); err != nil {
		return nil, err
	}
	if err := applySales(&p, input.Sales); err != nil {
		return nil, err
	}

	url, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if url != "" {
		p.Image = url
	}

	DeriveFields(&p, s.now())
	created, err := s.store.InsertOne(ctx, p)
	if err != nil {
		return nil, conflictOr(err)
	}
	return &created, nil
}

// Update cập nhật một phần, field vắng mặt giữ nguyên
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, input *productdto.ProductUpdateInput, image *ImageUpload, userID primitive.ObjectID) (*models.Product, error) {
	if err := checkImage(image); err != nil {
		return nil, err
	}

	p, err := s.store.FindOneById(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if input.StoreID != nil {
		storeID, err := utility.ParseObjectID(*input.StoreID)
		if err != nil {
			return nil, common.NewValidationError("Invalid storeId", nil)
		}
		p.StoreID = storeID
	}
	if input.SKU != nil {
		p.SKU = normalizeSKU(*input.SKU)
	}
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Description != nil {
		p.Description = strings.TrimSpace(*input.Description)
	}
	if input.Image != nil {
		p.Image = *input.Image
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	applyPricing(&p, input.Pricing)
	applyStock(&p, input.Stock)
	if err := applyPerishable(&p, input.Perishable); err != nil {
		return nil, err
	}
	if err := applyAIMetrics(&p, input.AIMetrics); err != nil {
		return nil, err
	}
	if err := applySales(&p, input.Sales); err != nil {
		return nil, err
	}

	url, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if url != "" {
		p.Image = url
	}

	p.UpdatedBy = userID
	DeriveFields(&p, s.now())
	updated, err := s.store.ReplaceVersioned(ctx, p)
	if err != nil {
		return nil, conflictOr(err)
	}
	return &updated, nil
}

// Get đọc sản phẩm, các field dẫn xuất được tính theo thời điểm đọc
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.store.FindOneById(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	DeriveFields(&p, s.now())
	return &p, nil
}

// List danh sách có lọc, sắp xếp và phân trang
func (s *ProductService) List(ctx context.Context, q productdto.ListQuery) (*basemodels.PaginateResult[models.Product], error) {
	filter, sort, err := BuildListFilter(q)
	if err != nil {
		return nil, err
	}
	result, err := s.store.FindWithPagination(ctx, filter, q.Page, q.Limit, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range result.Items {
		DeriveFields(&result.Items[i], now)
	}
	return result, nil
}

// Delete mặc định chuyển sang discontinued, force=true thì xóa hẳn (trả về nil)
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID, force bool, userID primitive.ObjectID) (*models.Product, error) {
	if force {
		if err := s.store.DeleteById(ctx, id); err != nil {
			return nil, notFoundOr(err)
		}
		return nil, nil
	}

	p, err := s.store.FindOneById(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	DeriveFields(&p, s.now())
	p.Status = models.StatusDiscontinued
	p.UpdatedBy = userID

	updated, err := s.store.ReplaceVersioned(ctx, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateStock tăng, giảm (không dưới 0) hoặc đặt số lượng tồn
func (s *ProductService) UpdateStock(ctx context.Context, id primitive.ObjectID, input *productdto.StockUpdateInput, userID primitive.ObjectID) (*models.Product, error) {
	amount, ok := input.ParseAmount()
	if !ok {
		return nil, common.NewValidationError("Invalid amount", nil)
	}

	p, err := s.store.FindOneById(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	switch input.Op {
	case productdto.StockOpSet:
		p.Stock.Quantity = amount
	case productdto.StockOpInc:
		p.Stock.Quantity += amount
	case productdto.StockOpDec:
		p.Stock.Quantity -= amount
		if p.Stock.Quantity < 0 {
			p.Stock.Quantity = 0
		}
	default:
		return nil, common.NewValidationError("Invalid op. Use inc|dec|set", nil)
	}

	p.UpdatedBy = userID
	DeriveFields(&p, s.now())
	updated, err := s.store.ReplaceVersioned(ctx, p)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Predictions các bản dự đoán đã lưu của sản phẩm, mới nhất trước
func (s *ProductService) Predictions(ctx context.Context, id primitive.ObjectID, limit int64) ([]models.PricePrediction, error) {
	if _, err := s.store.FindOneById(ctx, id); err != nil {
		return nil, notFoundOr(err)
	}
	if s.archive == nil {
		return []models.PricePrediction{}, nil
	}
	if limit <= 0 {
		limit = DefaultPredictionListLimit
	}
	return s.archive.ListByProduct(ctx, id, limit)
}

// BuildListFilter dựng filter và sort cho danh sách. storeId sai định dạng bị bỏ qua.
func BuildListFilter(q productdto.ListQuery) (bson.M, bson.D, error) {
	filter := bson.M{}
	if search := strings.TrimSpace(q.Search); search != "" {
		filter["$text"] = bson.M{"$search": search}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.StoreID != "" {
		if oid := utility.String2ObjectID(q.StoreID); !oid.IsZero() {
			filter["storeId"] = oid
		}
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if !utility.Contains(SortFields, sortBy) {
		return nil, nil, common.NewValidationError("Invalid sortBy", fmt.Sprintf("allowed: %s", strings.Join(SortFields, ", ")))
	}
	order := -1
	if strings.EqualFold(q.SortOrder, "asc") {
		order = 1
	}
	return filter, bson.D{{Key: sortBy, Value: order}, {Key: "_id", Value: order}}, nil
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func applyPricing(p *models.Product, in *productdto.PricingInput) {
	if in == nil {
		return
	}
	if in.CostPrice != nil {
		p.Pricing.CostPrice = *in.CostPrice
	}
	if in.MRP != nil {
		p.Pricing.MRP = *in.MRP
	}
	if in.CurrentPrice != nil {
		p.Pricing.CurrentPrice = *in.CurrentPrice
	}
}

func applyStock(p *models.Product, in *productdto.StockInput) {
	if in == nil {
		return
	}
	if in.Quantity != nil {
		p.Stock.Quantity = *in.Quantity
	}
	if in.Unit != "" {
		p.Stock.Unit = in.Unit
	}
	if in.ReorderLevel != nil {
		p.Stock.ReorderLevel = *in.ReorderLevel
	}
}

func applyPerishable(p *models.Product, in *productdto.PerishableInput) error {
	if in == nil {
		return nil
	}
	mfg, err := utility.ParseDate(in.ManufactureDate)
	if err != nil {
		return common.NewValidationError("perishable.manufactureDate: invalid date", err.Error())
	}
	exp, err := utility.ParseDate(in.ExpiryDate)
	if err != nil {
		return common.NewValidationError("perishable.expiryDate: invalid date", err.Error())
	}
	p.Perishable.ManufactureDate = &mfg
	p.Perishable.ExpiryDate = &exp
	return nil
}

func applyAIMetrics(p *models.Product, in *productdto.AIMetricsInput) error {
	if in == nil {
		return nil
	}
	if in.MLProductID != nil {
		p.AIMetrics.MLProductID = strings.TrimSpace(*in.MLProductID)
	}
	if in.DemandScore != nil {
		p.AIMetrics.DemandScore = *in.DemandScore
	}
	if in.SpoilageRisk != nil {
		p.AIMetrics.SpoilageRisk = *in.SpoilageRisk
	}
	if in.RecommendedPrice != nil {
		p.AIMetrics.RecommendedPrice = *in.RecommendedPrice
	}
	if in.LastPredictionDate != nil && *in.LastPredictionDate != "" {
		t, err := utility.ParseDate(*in.LastPredictionDate)
		if err != nil {
			return common.NewValidationError("aiMetrics.lastPredictionDate: invalid date", err.Error())
		}
		p.AIMetrics.LastPredictionDate = &t
	}
	return nil
}

func applySales(p *models.Product, in *productdto.SalesInput) error {
	if in == nil {
		return nil
	}
	if in.TotalSold != nil {
		p.Sales.TotalSold = *in.TotalSold
	}
	if in.TotalRevenue != nil {
		p.Sales.TotalRevenue = *in.TotalRevenue
	}
	if in.AverageDailySales != nil {
		p.Sales.AverageDailySales = *in.AverageDailySales
	}
	if in.LastSaleDate != nil && *in.LastSaleDate != "" {
		t, err := utility.ParseDate(*in.LastSaleDate)
		if err != nil {
			return common.NewValidationError("sales.lastSaleDate: invalid date", err.Error())
		}
		p.Sales.LastSaleDate = &t
	}
	return nil
}

func checkImage(image *ImageUpload) error {
	if image == nil {
		return nil
	}
	if !media.IsAllowedImage(image.ContentType) {
		return common.NewValidationError("Only JPEG, PNG, GIF or WEBP images are allowed", nil)
	}
	if image.Size > media.MaxImageBytes {
		return common.NewValidationError("Image must be at most 5MB", nil)
	}
	return nil
}

func (s *ProductService) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	if image == nil {
		return "", nil
	}
	if s.uploader == nil {
		return "", common.NewUpstreamError(common.StatusServiceUnavailable, "Image upload is not configured", nil)
	}
	url, err := s.uploader.Upload(ctx, media.ObjectName(media.ProductFolder, image.ContentType, s.now()), image.ContentType, image.Reader)
	if err != nil {
		return "", common.NewUpstreamError(common.StatusBadGateway, "Image upload failed", err.Error())
	}
	return url, nil
}
