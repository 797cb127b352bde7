// Package productsvc - nghiệp vụ sản phẩm: tính trường dẫn xuất, CRUD, tồn kho, tối ưu giá.
package productsvc

import (
	"context"
	"errors"
	"fmt"

	basemodels "github.com/KraitOPP/PerishPro-sub000/internal/api/base/models"
	basesvc "github.com/KraitOPP/PerishPro-sub000/internal/api/base/service"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductStore lưu trữ sản phẩm
type ProductStore interface {
	InsertOne(ctx context.Context, p models.Product) (models.Product, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Product, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[models.Product], error)
	DeleteById(ctx context.Context, id primitive.ObjectID) error

	// ReplaceVersioned ghi đè p nếu bản đang lưu vẫn có version = p.Version,
	// bản ghi mới mang version + 1. Lệch version trả về ErrVersionConflict.
	ReplaceVersioned(ctx context.Context, p models.Product) (models.Product, error)
}

// MongoProductStore ProductStore trên collection products
type MongoProductStore struct {
	*basesvc.BaseServiceMongoImpl[models.Product]
}

// NewMongoProductStore bọc base service của collection products
func NewMongoProductStore(base *basesvc.BaseServiceMongoImpl[models.Product]) *MongoProductStore {
	return &MongoProductStore{BaseServiceMongoImpl: base}
}

// NewMongoProductStoreFromRegistry lấy collection products từ registry
func NewMongoProductStoreFromRegistry() (*MongoProductStore, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Products)
	if !exist {
		return nil, fmt.Errorf("failed to get products collection: %v", common.ErrNotFound)
	}
	return NewMongoProductStore(basesvc.NewBaseServiceMongo[models.Product](collection)), nil
}

// VersionFilter filter compare-and-swap. Document cũ chưa có field version được coi là version 0.
func VersionFilter(id primitive.ObjectID, expected int64) bson.M {
	if expected == 0 {
		return bson.M{
			"_id": id,
			"$or": bson.A{
				bson.M{"version": 0},
				bson.M{"version": bson.M{"$exists": false}},
			},
		}
	}
	return bson.M{"_id": id, "version": expected}
}

// ReplaceVersioned xem ProductStore
func (s *MongoProductStore) ReplaceVersioned(ctx context.Context, p models.Product) (models.Product, error) {
	expected := p.Version
	p.Version = expected + 1

	replaced, err := s.ReplaceOne(ctx, VersionFilter(p.ID, expected), p)
	if errors.Is(err, common.ErrNotFound) {
		return models.Product{}, common.ErrVersionConflict
	}
	return replaced, err
}
