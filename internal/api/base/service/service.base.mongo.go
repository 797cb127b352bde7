package basesvc

import (
	"context"
	"errors"
	"time"

	basemodels "github.com/KraitOPP/PerishPro-sub000/internal/api/base/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/api/events"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseServiceMongo các thao tác MongoDB dùng chung cho mọi model
type BaseServiceMongo[Model any] interface {
	InsertOne(ctx context.Context, data Model) (Model, error)
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)
	UpdateById(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (Model, error)
	ReplaceOne(ctx context.Context, filter interface{}, data Model) (Model, error)
	DeleteById(ctx context.Context, id primitive.ObjectID) error
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
}

// BaseServiceMongoImpl triển khai BaseServiceMongo trên một collection
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo base service cho collection
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{collection: collection}
}

// Collection trả về collection MongoDB cho service con cần truy vấn riêng
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

func (s *BaseServiceMongoImpl[T]) emit(ctx context.Context, op string, id interface{}, doc interface{}) {
	var docID string
	if oid, ok := id.(primitive.ObjectID); ok {
		docID = oid.Hex()
	}
	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      op,
		DocumentID:     docID,
		Document:       doc,
	})
}

// InsertOne thêm document, gán createdAt/updatedAt (unix ms) rồi đọc lại bản đã lưu
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}
	utility.StripEmptyStrings(dataMap)

	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	var created T
	if err := s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpInsert, result.InsertedID, created)
	return created, nil
}

// FindOne tìm một document theo filter
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var result T
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOne()
	}
	if err := s.collection.FindOne(ctx, filter, opts).Decode(&result); err != nil {
		return result, common.ConvertMongoError(err)
	}
	return result, nil
}

// Find tìm tất cả document theo filter
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// FindOneById tìm theo _id
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// FindWithPagination tìm có phân trang. page < 1 thành 1, limit <= 0 thành 10.
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	opts.SetSkip((page - 1) * limit)
	opts.SetLimit(limit)

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	items, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return basemodels.NewPaginateResult(items, page, limit, total), nil
}

// UpdateById $set các field và cập nhật updatedAt, trả về bản mới
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (T, error) {
	var updated T
	if set == nil {
		set = map[string]interface{}{}
	}
	set["updatedAt"] = time.Now().UnixMilli()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return updated, common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpUpdate, id, updated)
	return updated, nil
}

// ReplaceOne thay toàn bộ document khớp filter và trả về bản sau khi thay trong cùng một lệnh.
// Không khớp trả về ErrNotFound.
func (s *BaseServiceMongoImpl[T]) ReplaceOne(ctx context.Context, filter interface{}, data T) (T, error) {
	var zero T

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}
	utility.StripEmptyStrings(dataMap)
	dataMap["updatedAt"] = time.Now().UnixMilli()

	var replaced T
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	if err := s.collection.FindOneAndReplace(ctx, filter, dataMap, opts).Decode(&replaced); err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpUpdate, dataMap["_id"], replaced)
	return replaced, nil
}

// DeleteById xóa theo _id, phát sự kiện kèm bản đã xóa
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	var existing T
	if err := s.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		return common.ConvertMongoError(err)
	}
	s.emit(ctx, events.OpDelete, id, existing)
	return nil
}

// CountDocuments đếm document theo filter
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// DocumentExists kiểm tra có document khớp filter hay không
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	_, err := s.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1}))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return false, err
}
