package database

import (
	"context"

	"github.com/KraitOPP/PerishPro-sub000/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductIndexModels index cho products trên các field lồng nhau, không khai báo được qua tag
func ProductIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "storeId", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetName("product_store_category"),
		},
		{
			Keys:    bson.D{{Key: "perishable.expiryDate", Value: 1}},
			Options: options.Index().SetName("product_expiry_date"),
		},
		{
			Keys:    bson.D{{Key: "stock.quantity", Value: 1}},
			Options: options.Index().SetName("product_stock_quantity"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("product_text_search"),
		},
	}
}

// CreateProductAdditionalIndexes gọi sau CreateIndexes cho collection products
func CreateProductAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexModels(ctx, db.Collection(global.MongoDB_ColNames.Products), ProductIndexModels())
}
