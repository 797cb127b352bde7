package productsvc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	productdto "github.com/KraitOPP/PerishPro-sub000/internal/api/product/dto"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var serviceNow = time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

type fakeUploader struct {
	err      error
	objects  []string
	contents [][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	data, _ := io.ReadAll(r)
	u.objects = append(u.objects, objectName)
	u.contents = append(u.contents, data)
	return "https://cdn.example.com/" + objectName, nil
}

func newService(store *fakeProductStore, uploader *fakeUploader, archive PredictionArchive) *ProductService {
	var s *ProductService
	if uploader == nil {
		s = NewProductService(store, nil, archive)
	} else {
		s = NewProductService(store, uploader, archive)
	}
	s.now = fixedClock(serviceNow)
	return s
}

func createInput() *productdto.ProductCreateInput {
	return &productdto.ProductCreateInput{
		SKU:        " milk-1l ",
		Name:       "Whole Milk",
		Category:   "Dairy",
		Pricing:    &productdto.PricingInput{CostPrice: f64(2), MRP: f64(4), CurrentPrice: f64(3)},
		Stock:      &productdto.StockInput{Quantity: f64(50)},
		Perishable: &productdto.PerishableInput{ManufactureDate: "2024-01-01", ExpiryDate: "2024-01-08"},
	}
}

func TestCreate_DefaultsAndDerived(t *testing.T) {
	store := newFakeProductStore()
	userID := primitive.NewObjectID()

	p, err := newService(store, nil, nil).Create(context.Background(), createInput(), nil, userID)
	require.NoError(t, err)

	assert.Equal(t, "MILK-1L", p.SKU)
	assert.Equal(t, userID, p.StoreID)
	assert.Equal(t, userID, p.CreatedBy)
	assert.Equal(t, DefaultUnit, p.Stock.Unit)
	assert.Equal(t, float64(DefaultReorderLevel), p.Stock.ReorderLevel)
	assert.Equal(t, float64(DefaultDemandScore), p.AIMetrics.DemandScore)
	assert.Equal(t, DefaultSpoilageRisk, p.AIMetrics.SpoilageRisk)
	assert.Equal(t, 7, p.Perishable.ShelfLife)
	assert.Equal(t, 2, p.Perishable.DaysToExpiry)
	assert.Equal(t, models.StatusExpiringSoon, p.Status)
	assert.InDelta(t, 50.0, p.Pricing.ProfitMargin, 1e-9)
	assert.Equal(t, int64(0), p.Version)
	assert.NotNil(t, p.Pricing.PriceHistory)
}

func TestCreate_DuplicateSKU(t *testing.T) {
	store := newFakeProductStore()
	svc := newService(store, nil, nil)
	_, err := svc.Create(context.Background(), createInput(), nil, primitive.NewObjectID())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createInput(), nil, primitive.NewObjectID())
	assert.Equal(t, common.StatusConflict, common.StatusOf(err))
	assert.EqualError(t, err, "Product with this SKU already exists")
}

func TestCreate_InvalidDate(t *testing.T) {
	in := createInput()
	in.Perishable.ExpiryDate = "next week"

	_, err := newService(newFakeProductStore(), nil, nil).Create(context.Background(), in, nil, primitive.NewObjectID())
	assert.Equal(t, common.StatusBadRequest, common.StatusOf(err))
	assert.EqualError(t, err, "perishable.expiryDate: invalid date")
}

func TestCreate_Image(t *testing.T) {
	png := &ImageUpload{ContentType: "image/png", Size: 4, Reader: bytes.NewReader([]byte("\x89PNG"))}

	t.Run("uploaded", func(t *testing.T) {
		uploader := &fakeUploader{}
		p, err := newService(newFakeProductStore(), uploader, nil).Create(context.Background(), createInput(), png, primitive.NewObjectID())
		require.NoError(t, err)
		require.Len(t, uploader.objects, 1)
		assert.Equal(t, "https://cdn.example.com/"+uploader.objects[0], p.Image)
		assert.Equal(t, []byte("\x89PNG"), uploader.contents[0])
	})

	t.Run("not configured", func(t *testing.T) {
		store := newFakeProductStore()
		_, err := newService(store, nil, nil).Create(context.Background(), createInput(), png, primitive.NewObjectID())
		assert.Equal(t, common.StatusServiceUnavailable, common.StatusOf(err))
		assert.Equal(t, 0, store.writes)
	})

	t.Run("upload fails", func(t *testing.T) {
		_, err := newService(newFakeProductStore(), &fakeUploader{err: errors.New("quota")}, nil).
			Create(context.Background(), createInput(), png, primitive.NewObjectID())
		assert.Equal(t, common.StatusBadGateway, common.StatusOf(err))
		assert.EqualError(t, err, "Image upload failed")
	})

	t.Run("wrong type", func(t *testing.T) {
		pdf := &ImageUpload{ContentType: "application/pdf", Size: 10, Reader: bytes.NewReader(nil)}
		_, err := newService(newFakeProductStore(), &fakeUploader{}, nil).
			Create(context.Background(), createInput(), pdf, primitive.NewObjectID())
		assert.Equal(t, common.StatusBadRequest, common.StatusOf(err))
	})
}

func TestUpdate_PartialRecomputes(t *testing.T) {
	existing := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
	existing.SKU = "OLD"
	store := newFakeProductStore(existing)
	userID := primitive.NewObjectID()

	in := &productdto.ProductUpdateInput{
		Name:  str("Skim Milk"),
		Stock: &productdto.StockInput{Quantity: f64(5)},
	}
	p, err := newService(store, nil, nil).Update(context.Background(), existing.ID, in, nil, userID)
	require.NoError(t, err)

	assert.Equal(t, "Skim Milk", p.Name)
	assert.Equal(t, "OLD", p.SKU)
	assert.Equal(t, "l", p.Stock.Unit)
	assert.Equal(t, 5.0, p.Stock.Quantity)
	assert.Equal(t, models.StatusLowStock, p.Status)
	assert.Equal(t, 30, p.Perishable.DaysToExpiry)
	assert.Equal(t, int64(1), p.Version)
	assert.Equal(t, userID, p.UpdatedBy)
}

func TestCreate_Sales(t *testing.T) {
	in := createInput()
	in.Sales = &productdto.SalesInput{
		TotalSold:    f64(12),
		TotalRevenue: f64(36),
		LastSaleDate: str("2024-01-05"),
	}

	p, err := newService(newFakeProductStore(), nil, nil).Create(context.Background(), in, nil, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.Sales.TotalSold)
	assert.Equal(t, 36.0, p.Sales.TotalRevenue)
	assert.Equal(t, 0.0, p.Sales.AverageDailySales)
	require.NotNil(t, p.Sales.LastSaleDate)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *p.Sales.LastSaleDate)

	in = createInput()
	in.SKU = "OTHER"
	in.Sales = &productdto.SalesInput{LastSaleDate: str("yesterday")}
	_, err = newService(newFakeProductStore(), nil, nil).Create(context.Background(), in, nil, primitive.NewObjectID())
	assert.Equal(t, common.StatusBadRequest, common.StatusOf(err))
	assert.EqualError(t, err, "sales.lastSaleDate: invalid date")
}

func TestUpdate_SalesPartial(t *testing.T) {
	last := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	existing := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
	existing.Sales = models.Sales{TotalSold: 10, TotalRevenue: 30, AverageDailySales: 2, LastSaleDate: &last}
	store := newFakeProductStore(existing)

	in := &productdto.ProductUpdateInput{Sales: &productdto.SalesInput{AverageDailySales: f64(4)}}
	p, err := newService(store, nil, nil).Update(context.Background(), existing.ID, in, nil, primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, 10.0, p.Sales.TotalSold)
	assert.Equal(t, 30.0, p.Sales.TotalRevenue)
	assert.Equal(t, 4.0, p.Sales.AverageDailySales)
	require.NotNil(t, p.Sales.LastSaleDate)
	assert.Equal(t, last, *p.Sales.LastSaleDate)
}

func TestUpdate_NotFound(t *testing.T) {
	_, err := newService(newFakeProductStore(), nil, nil).
		Update(context.Background(), primitive.NewObjectID(), &productdto.ProductUpdateInput{}, nil, primitive.NilObjectID)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
	assert.EqualError(t, err, "Product not found")
}

func TestUpdateStock(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		amount  interface{}
		want    float64
		wantErr string
	}{
		{"inc", "inc", 5.0, 45, ""},
		{"dec floors at zero", "dec", 100.0, 0, ""},
		{"set from string", "set", "12.5", 12.5, ""},
		{"negative amount", "set", -1.0, 0, "Invalid amount"},
		{"missing amount", "set", nil, 0, "Invalid amount"},
		{"bad op", "mul", 2.0, 0, "Invalid op. Use inc|dec|set"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
			store := newFakeProductStore(p)

			got, err := newService(store, nil, nil).UpdateStock(context.Background(), p.ID,
				&productdto.StockUpdateInput{Op: tc.op, Amount: tc.amount}, primitive.NilObjectID)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				assert.Equal(t, common.StatusBadRequest, common.StatusOf(err))
				assert.Equal(t, 0, store.writes)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Stock.Quantity)
			assert.Equal(t, tc.want, store.get(p.ID).Stock.Quantity)
		})
	}
}

func TestUpdateStock_ZeroMakesLowStock(t *testing.T) {
	p := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
	store := newFakeProductStore(p)

	got, err := newService(store, nil, nil).UpdateStock(context.Background(), p.ID,
		&productdto.StockUpdateInput{Op: "set", Amount: 0.0}, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLowStock, got.Status)
	assert.Equal(t, "Out of Stock", got.StockStatus())
}

func TestDelete(t *testing.T) {
	p := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
	store := newFakeProductStore(p)
	svc := newService(store, nil, nil)

	soft, err := svc.Delete(context.Background(), p.ID, false, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDiscontinued, soft.Status)
	assert.Equal(t, models.StatusDiscontinued, store.get(p.ID).Status)

	gone, err := svc.Delete(context.Background(), p.ID, true, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = svc.Get(context.Background(), p.ID)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))

	_, err = svc.Delete(context.Background(), p.ID, true, primitive.NilObjectID)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}

func TestGet_RecomputesWithoutWriting(t *testing.T) {
	p := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 2))
	p.Perishable.DaysToExpiry = 9
	store := newFakeProductStore(p)

	got, err := newService(store, nil, nil).Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Perishable.DaysToExpiry)
	assert.Equal(t, models.StatusExpiringSoon, got.Status)
	assert.Equal(t, 9, store.get(p.ID).Perishable.DaysToExpiry)
	assert.Equal(t, 0, store.writes)
}

func TestBuildListFilter(t *testing.T) {
	storeID := primitive.NewObjectID()
	filter, sort, err := BuildListFilter(productdto.ListQuery{
		Search:    " milk ",
		Category:  "Dairy",
		Status:    "active",
		StoreID:   storeID.Hex(),
		SortBy:    "pricing.currentPrice",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"$text":    bson.M{"$search": "milk"},
		"category": "Dairy",
		"status":   "active",
		"storeId":  storeID,
	}, filter)
	assert.Equal(t, bson.D{{Key: "pricing.currentPrice", Value: 1}, {Key: "_id", Value: 1}}, sort)

	filter, sort, err = BuildListFilter(productdto.ListQuery{StoreID: "not-an-id"})
	require.NoError(t, err)
	assert.Empty(t, filter)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, sort)

	_, _, err = BuildListFilter(productdto.ListQuery{SortBy: "password"})
	assert.EqualError(t, err, "Invalid sortBy")
}

func TestList(t *testing.T) {
	var items []models.Product
	for i := 0; i < 3; i++ {
		items = append(items, perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30)))
	}
	items[2].Status = models.StatusDiscontinued
	store := newFakeProductStore(items...)

	res, err := newService(store, nil, nil).List(context.Background(), productdto.ListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, int64(2), res.TotalPage)
	assert.Len(t, res.Items, 2)
	for _, p := range res.Items {
		assert.Equal(t, 30, p.Perishable.DaysToExpiry)
	}
}

func TestExportXLSX(t *testing.T) {
	a := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
	a.SKU = "A-1"
	sold := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	a.Sales = models.Sales{TotalSold: 7, LastSaleDate: &sold}
	b := perishableProduct("ML-2", 5, serviceNow.AddDate(0, 0, 1))
	b.SKU = "B-2"
	store := newFakeProductStore(a, b)

	data, err := newService(store, nil, nil).ExportXLSX(context.Background(), productdto.ListQuery{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Stock Status", rows[0][12])
	assert.Equal(t, "Last Sale Date", rows[0][len(rows[0])-1])

	skus := []string{rows[1][1], rows[2][1]}
	assert.ElementsMatch(t, []string{"A-1", "B-2"}, skus)
	for _, row := range rows[1:] {
		if row[1] == "A-1" {
			assert.Equal(t, "7", row[len(exportHeader)-4])
			assert.Equal(t, "2024-01-05", row[len(exportHeader)-1])
		}
		if row[1] == "B-2" {
			assert.Equal(t, models.StatusExpiringSoon, row[4])
			assert.Equal(t, "1", row[15])
		}
	}
}

func TestPredictions(t *testing.T) {
	p := perishableProduct("ML-1", 3, serviceNow.AddDate(0, 0, 30))
	archive := &fakeArchive{records: []models.PricePrediction{
		{ProductID: p.ID, MLProductID: "ML-1"},
		{ProductID: primitive.NewObjectID()},
		{ProductID: p.ID, MLProductID: "ML-1b"},
	}}
	svc := newService(newFakeProductStore(p), nil, archive)

	got, err := svc.Predictions(context.Background(), p.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ML-1b", got[0].MLProductID)

	_, err = svc.Predictions(context.Background(), primitive.NewObjectID(), 0)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}
