package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCollections tạo các collection còn thiếu trong database
func EnsureCollections(ctx context.Context, db *mongo.Database, names []string) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	for _, name := range names {
		if name == "" || have[name] {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", name)
		if err := db.CreateCollection(ctx, name); err != nil && !isIndexExistsError(err) {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// parseIndexTag tách tag `index:"unique,sparse;single,order:-1"` thành danh sách cấu hình
func parseIndexTag(tag string) []map[string]string {
	var result []map[string]string
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, sub := range strings.Split(part, ",") {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				continue
			}
			kv := strings.SplitN(sub, ":", 2)
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		if len(entry) > 0 {
			result = append(result, entry)
		}
	}
	return result
}

// IndexModelsFromTags đọc tag `index` trên các field cấp một của model.
// Hỗ trợ single (order:-1), unique (sparse), ttl:<giây>, text.
func IndexModelsFromTags(model interface{}) ([]mongo.IndexModel, error) {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var models []mongo.IndexModel
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.SplitN(field.Tag.Get("bson"), ",", 2)[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, cfg := range parseIndexTag(tag) {
			order := 1
			if cfg["order"] == "-1" {
				order = -1
			}
			_, sparse := cfg["sparse"]

			if _, ok := cfg["single"]; ok {
				models = append(models, mongo.IndexModel{
					Keys:    bson.D{{Key: bsonField, Value: order}},
					Options: options.Index().SetName(bsonField + "_single").SetSparse(sparse),
				})
			}
			if _, ok := cfg["unique"]; ok {
				models = append(models, mongo.IndexModel{
					Keys:    bson.D{{Key: bsonField, Value: 1}},
					Options: options.Index().SetName(bsonField + "_unique").SetUnique(true).SetSparse(sparse),
				})
			}
			if v, ok := cfg["ttl"]; ok {
				ttl, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("TTL không hợp lệ cho %s: %w", bsonField, err)
				}
				models = append(models, mongo.IndexModel{
					Keys:    bson.D{{Key: bsonField, Value: 1}},
					Options: options.Index().SetName(bsonField + "_ttl").SetExpireAfterSeconds(int32(ttl)),
				})
			}
			if _, ok := cfg["text"]; ok {
				models = append(models, mongo.IndexModel{
					Keys:    bson.D{{Key: bsonField, Value: "text"}},
					Options: options.Index().SetName(bsonField + "_text"),
				})
			}
		}
	}
	return models, nil
}

// CreateIndexes tạo các index khai báo qua tag của model. Index đã tồn tại được bỏ qua.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	models, err := IndexModelsFromTags(model)
	if err != nil {
		return err
	}
	return createIndexModels(ctx, collection, models)
}

func createIndexModels(ctx context.Context, collection *mongo.Collection, models []mongo.IndexModel) error {
	log := logger.GetAppLogger().WithField("collection", collection.Name())
	for _, m := range models {
		if _, err := collection.Indexes().CreateOne(ctx, m); err != nil {
			if isIndexExistsError(err) {
				log.WithError(err).Debug("Index đã tồn tại, bỏ qua")
				continue
			}
			return fmt.Errorf("không thể tạo index trên %s: %w", collection.Name(), err)
		}
	}
	log.WithField("count", len(models)).Debug("Đã xử lý index")
	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "NamespaceExists")
}
