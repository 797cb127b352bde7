package productsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var optimizeNow = time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

func newOptimizer(store *fakeProductStore, pred *fakePredictor, archive PredictionArchive) *PriceOptimizer {
	o := NewPriceOptimizer(store, pred, archive, 0)
	o.now = fixedClock(optimizeNow)
	return o
}

func TestOptimizePrice_RoundsAndPushesHistory(t *testing.T) {
	p := perishableProduct("ML-42", 3.00, optimizeNow.AddDate(0, 0, 5))
	store := newFakeProductStore(p)
	pred := &fakePredictor{price: 2.495}
	archive := &fakeArchive{}
	userID := primitive.NewObjectID()

	res, err := newOptimizer(store, pred, archive).OptimizePrice(context.Background(), p.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 3.00, res.OldPrice)
	assert.Equal(t, 2.50, res.NewPrice)
	assert.True(t, res.HistoryPushed)
	assert.Equal(t, "ML-42", res.MLProductID)
	assert.Equal(t, "test-1", res.Summary.ModelVersion)

	require.Len(t, pred.calls, 1)
	assert.Equal(t, "ML-42", pred.calls[0].ProductID)
	assert.Equal(t, 40.0, pred.calls[0].StockLevel)
	assert.Equal(t, 5, pred.calls[0].DaysToExpiry)

	saved := store.get(p.ID)
	assert.Equal(t, 2.50, saved.Pricing.CurrentPrice)
	require.NotNil(t, saved.Pricing.PreviousPrice)
	assert.Equal(t, 3.00, *saved.Pricing.PreviousPrice)
	require.Len(t, saved.Pricing.PriceHistory, 1)
	entry := saved.Pricing.PriceHistory[0]
	assert.Equal(t, models.PriceReasonMLOptimize, entry.Reason)
	assert.Equal(t, 3.00, entry.Price)
	assert.Equal(t, optimizeNow, entry.ChangedAt)
	assert.Equal(t, "ML-42", entry.Meta["correlationId"])
	assert.Equal(t, 5, entry.Meta["daysToExpiry"])

	assert.Equal(t, 2.50, saved.AIMetrics.RecommendedPrice)
	assert.Equal(t, 90.0, saved.AIMetrics.ConfidenceScore)
	require.NotNil(t, saved.AIMetrics.LastOptimizedAt)
	assert.NotNil(t, saved.AIMetrics.LastOptimization)
	assert.Equal(t, int64(1), saved.Version)
	assert.Equal(t, userID, saved.UpdatedBy)
	assert.InDelta(t, 150.0, saved.Pricing.ProfitMargin, 1e-9)

	require.Len(t, archive.records, 1)
	rec := archive.records[0]
	assert.Equal(t, p.ID, rec.ProductID)
	assert.Equal(t, 2.50, rec.Recommendations.OptimalPrice)
	assert.Equal(t, optimizeNow.Add(5*24*time.Hour), rec.ExpiresAt)
}

func TestOptimizePrice_HistoryCapped(t *testing.T) {
	p := perishableProduct("ML-1", 1.00, optimizeNow.AddDate(0, 0, 10))
	p.Pricing.PriceHistory = historyEntries(DefaultPriceHistoryLimit)
	store := newFakeProductStore(p)
	pred := &fakePredictor{}
	o := newOptimizer(store, pred, nil)

	for i := 0; i < 5; i++ {
		pred.price = 2.00 + float64(i)
		_, err := o.OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
		require.NoError(t, err)
	}

	saved := store.get(p.ID)
	assert.Len(t, saved.Pricing.PriceHistory, DefaultPriceHistoryLimit)
	assert.Equal(t, 5.00, saved.Pricing.PriceHistory[0].Price)
	assert.Equal(t, "seed-14", saved.Pricing.PriceHistory[DefaultPriceHistoryLimit-1].Reason)
}

func TestOptimizePrice_SamePriceNoHistory(t *testing.T) {
	p := perishableProduct("ML-1", 2.50, optimizeNow.AddDate(0, 0, 10))
	store := newFakeProductStore(p)
	pred := &fakePredictor{price: 2.5001}
	o := newOptimizer(store, pred, nil)

	res, err := o.OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
	require.NoError(t, err)
	assert.False(t, res.HistoryPushed)

	res, err = o.OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
	require.NoError(t, err)
	assert.False(t, res.HistoryPushed)

	saved := store.get(p.ID)
	assert.Empty(t, saved.Pricing.PriceHistory)
	assert.Nil(t, saved.Pricing.PreviousPrice)
	assert.Equal(t, 2.50, saved.Pricing.CurrentPrice)
	assert.Equal(t, int64(2), saved.Version)
	assert.NotNil(t, saved.AIMetrics.LastOptimizedAt)
}

func TestOptimizePrice_Preconditions(t *testing.T) {
	expired := perishableProduct("ML-1", 2, optimizeNow.AddDate(0, 0, -1))
	noML := perishableProduct("  ", 2, optimizeNow.AddDate(0, 0, 3))
	noExpiry := perishableProduct("ML-1", 2, optimizeNow.AddDate(0, 0, 3))
	noExpiry.Perishable.ExpiryDate = nil
	staleZero := perishableProduct("ML-1", 2, optimizeNow.AddDate(0, 0, 3))
	staleZero.Perishable.DaysToExpiry = 0

	tests := []struct {
		name    string
		product models.Product
		message string
	}{
		{"missing ml id", noML, "ML correlation id not set"},
		{"missing expiry", noExpiry, "expiry date missing"},
		{"expired", expired, "already expired"},
		{"stored zero days", staleZero, "already expired"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeProductStore(tc.product)
			pred := &fakePredictor{price: 9}

			_, err := newOptimizer(store, pred, nil).OptimizePrice(context.Background(), tc.product.ID, primitive.NilObjectID)

			var appErr *common.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, common.ErrCodeBusinessState.Code, appErr.Code.Code)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Empty(t, pred.calls)
			assert.Equal(t, 0, store.writes)
			assert.Equal(t, tc.product.Pricing.CurrentPrice, store.get(tc.product.ID).Pricing.CurrentPrice)
		})
	}
}

func TestOptimizePrice_NotFound(t *testing.T) {
	_, err := newOptimizer(newFakeProductStore(), &fakePredictor{}, nil).
		OptimizePrice(context.Background(), primitive.NewObjectID(), primitive.NilObjectID)
	assert.Equal(t, common.StatusNotFound, common.StatusOf(err))
}

func TestOptimizePrice_UpstreamErrorNoWrite(t *testing.T) {
	p := perishableProduct("ML-1", 2, optimizeNow.AddDate(0, 0, 3))
	store := newFakeProductStore(p)
	pred := &fakePredictor{err: common.NewUpstreamError(500, "model crashed", nil)}

	_, err := newOptimizer(store, pred, nil).OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
	assert.Equal(t, 500, common.StatusOf(err))
	assert.Equal(t, 0, store.writes)

	pred.err = errors.New("boom")
	_, err = newOptimizer(store, pred, nil).OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
	assert.Equal(t, common.StatusBadGateway, common.StatusOf(err))
}

func TestOptimizePrice_ConcurrentWriteConflicts(t *testing.T) {
	p := perishableProduct("ML-1", 2, optimizeNow.AddDate(0, 0, 6))
	store := newFakeProductStore(p)
	store.beforeReplace = func(s *fakeProductStore, id primitive.ObjectID) {
		s.mu.Lock()
		other := s.items[id]
		other.Stock.Quantity = 1
		other.Version++
		s.items[id] = other
		s.mu.Unlock()
		s.beforeReplace = nil
	}

	_, err := newOptimizer(store, &fakePredictor{price: 1.5}, nil).OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
	require.ErrorIs(t, err, common.ErrVersionConflict)
	assert.Equal(t, common.StatusConflict, common.StatusOf(err))

	saved := store.get(p.ID)
	assert.Equal(t, 2.0, saved.Pricing.CurrentPrice)
	assert.Equal(t, 1.0, saved.Stock.Quantity)
}

func TestOptimizePrice_ArchiveFailureIgnored(t *testing.T) {
	p := perishableProduct("ML-1", 2, optimizeNow.AddDate(0, 0, 20))
	store := newFakeProductStore(p)

	res, err := newOptimizer(store, &fakePredictor{price: 1.75}, &fakeArchive{err: errors.New("disk full")}).
		OptimizePrice(context.Background(), p.ID, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Equal(t, 1.75, res.NewPrice)
}

func TestPredictionExpiry(t *testing.T) {
	assert.Equal(t, optimizeNow.Add(2*24*time.Hour), PredictionExpiry(optimizeNow, 2))
	assert.Equal(t, optimizeNow.Add(PredictionRetention), PredictionExpiry(optimizeNow, 30))
}

func TestPushPriceHistory(t *testing.T) {
	history := historyEntries(3)
	out := PushPriceHistory(history, models.PriceHistoryEntry{Price: 99}, 3)
	require.Len(t, out, 3)
	assert.Equal(t, 99.0, out[0].Price)
	assert.Equal(t, 1.0, out[2].Price)
	assert.Len(t, history, 3)
	assert.Equal(t, 0.0, history[0].Price)
}
