package authsvc

import (
	"context"
	"sync"

	models "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/models"
	basemodels "github.com/KraitOPP/PerishPro-sub000/internal/api/base/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeUserStore lưu user trong map, chỉ hiểu các filter mà UserService dùng
type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (f *fakeUserStore) match(filter interface{}, u models.User) bool {
	m, ok := filter.(bson.M)
	if !ok {
		return true
	}
	if email, ok := m["email"].(string); ok && u.Email != email {
		return false
	}
	if idFilter, ok := m["_id"].(bson.M); ok {
		if ne, ok := idFilter["$ne"].(primitive.ObjectID); ok && u.ID == ne {
			return false
		}
	}
	if id, ok := m["_id"].(primitive.ObjectID); ok && u.ID != id {
		return false
	}
	return true
}

func (f *fakeUserStore) InsertOne(_ context.Context, data models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == data.Email {
			return models.User{}, common.ErrDuplicate
		}
	}
	data.ID = primitive.NewObjectID()
	f.users[data.ID] = data
	return data, nil
}

func (f *fakeUserStore) FindOne(_ context.Context, filter interface{}, _ *options.FindOneOptions) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if f.match(filter, u) {
			return u, nil
		}
	}
	return models.User{}, common.ErrNotFound
}

func (f *fakeUserStore) Find(_ context.Context, filter interface{}, _ *options.FindOptions) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		if f.match(filter, u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) FindOneById(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return f.FindOne(ctx, bson.M{"_id": id}, nil)
}

func (f *fakeUserStore) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, _ *options.FindOptions) (*basemodels.PaginateResult[models.User], error) {
	items, _ := f.Find(ctx, filter, nil)
	return basemodels.NewPaginateResult(items, page, limit, int64(len(items))), nil
}

func (f *fakeUserStore) UpdateById(_ context.Context, id primitive.ObjectID, set map[string]interface{}) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	for k, v := range set {
		s, _ := v.(string)
		switch k {
		case "name":
			u.Name = s
		case "email":
			u.Email = s
		case "phone":
			u.Phone = s
		case "storeName":
			u.StoreName = s
		case "storeAddress":
			u.StoreAddress = s
		case "password":
			u.Password = s
		}
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeUserStore) ReplaceOne(_ context.Context, _ interface{}, data models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[data.ID]; !ok {
		return models.User{}, common.ErrNotFound
	}
	f.users[data.ID] = data
	return data, nil
}

func (f *fakeUserStore) DeleteById(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	items, _ := f.Find(ctx, filter, nil)
	return int64(len(items)), nil
}

func (f *fakeUserStore) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	n, _ := f.CountDocuments(ctx, filter)
	return n > 0, nil
}
