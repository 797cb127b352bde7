package worker

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMain(m *testing.M) {
	os.Setenv("LOG_OUTPUT", "stdout")
	os.Exit(m.Run())
}

type memStore struct {
	items     map[primitive.ObjectID]models.Product
	finds     int
	conflicts map[primitive.ObjectID]bool
}

func (s *memStore) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Product, error) {
	s.finds++
	f := filter.(bson.M)
	var after primitive.ObjectID
	if cond, ok := f["_id"].(bson.M); ok {
		after = cond["$gt"].(primitive.ObjectID)
	}
	out := []models.Product{}
	for _, p := range s.items {
		if p.Status == models.StatusDiscontinued {
			continue
		}
		if !after.IsZero() && p.ID.Hex() <= after.Hex() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	if opts.Limit != nil && int64(len(out)) > *opts.Limit {
		out = out[:*opts.Limit]
	}
	return out, nil
}

func (s *memStore) ReplaceVersioned(ctx context.Context, p models.Product) (models.Product, error) {
	if s.conflicts[p.ID] {
		return models.Product{}, common.ErrVersionConflict
	}
	if s.items[p.ID].Version != p.Version {
		return models.Product{}, common.ErrVersionConflict
	}
	p.Version++
	s.items[p.ID] = p
	return p, nil
}

func product(expiry time.Time, days int, status string) models.Product {
	return models.Product{
		ID:         primitive.NewObjectID(),
		Stock:      models.Stock{Quantity: 50, ReorderLevel: 10},
		Perishable: models.Perishable{ExpiryDate: &expiry, DaysToExpiry: days},
		Status:     status,
	}
}

func TestExpiryRefreshWorker_RunOnce(t *testing.T) {
	now := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	stale := product(now.AddDate(0, 0, 2), 5, models.StatusActive)          // now expiring-soon
	expired := product(now.AddDate(0, 0, -1), 1, models.StatusExpiringSoon) // now expired
	fresh := product(now.AddDate(0, 0, 20), 20, models.StatusActive)        // unchanged
	gone := product(now.AddDate(0, 0, -5), 9, models.StatusDiscontinued)    // skipped
	conflicted := product(now.AddDate(0, 0, 1), 4, models.StatusActive)     // write conflict

	store := &memStore{
		items:     map[primitive.ObjectID]models.Product{},
		conflicts: map[primitive.ObjectID]bool{conflicted.ID: true},
	}
	for _, p := range []models.Product{stale, expired, fresh, gone, conflicted} {
		store.items[p.ID] = p
	}

	w := NewExpiryRefreshWorker(store, time.Hour, 2)
	w.now = func() time.Time { return now }

	updated, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, 3, store.finds)

	assert.Equal(t, models.StatusExpiringSoon, store.items[stale.ID].Status)
	assert.Equal(t, 2, store.items[stale.ID].Perishable.DaysToExpiry)
	assert.Equal(t, int64(1), store.items[stale.ID].Version)

	assert.Equal(t, models.StatusExpired, store.items[expired.ID].Status)
	assert.Equal(t, int64(0), store.items[fresh.ID].Version)
	assert.Equal(t, models.StatusDiscontinued, store.items[gone.ID].Status)
	assert.Equal(t, 9, store.items[gone.ID].Perishable.DaysToExpiry)
	assert.Equal(t, 4, store.items[conflicted.ID].Perishable.DaysToExpiry)
}

func TestExpiryRefreshWorker_Defaults(t *testing.T) {
	w := NewExpiryRefreshWorker(&memStore{}, time.Second, 0)
	assert.Equal(t, 60*time.Minute, w.interval)
	assert.Equal(t, 200, w.batchSize)
}

func TestExpiryRefreshWorker_StopsOnCancel(t *testing.T) {
	store := &memStore{items: map[primitive.ObjectID]models.Product{}}
	w := NewExpiryRefreshWorker(store, time.Minute, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
