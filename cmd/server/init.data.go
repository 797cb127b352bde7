package main

import (
	"context"
	"time"

	authmodels "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/models"
	productmodels "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/database"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
)

// InitDefaultData đảm bảo các collection và index tồn tại trước khi nhận request
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("[INIT] Starting InitDefaultData...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)

	// 1. Collections
	if err := database.EnsureCollections(ctx, db, collectionNames()); err != nil {
		log.Fatalf("Failed to ensure collections: %v", err)
	}
	log.Info("[INIT] Step 1: Collections ensured")

	// 2. Index khai báo qua tag của model
	indexTargets := map[string]interface{}{
		global.MongoDB_ColNames.Users:            authmodels.User{},
		global.MongoDB_ColNames.Products:         productmodels.Product{},
		global.MongoDB_ColNames.PricePredictions: productmodels.PricePrediction{},
	}
	for name, model := range indexTargets {
		if err := database.CreateIndexes(ctx, db.Collection(name), model); err != nil {
			log.WithError(err).Warnf("Failed to create indexes for %s", name)
		}
	}

	// 3. Index trên field lồng nhau của products
	if err := database.CreateProductAdditionalIndexes(ctx, db); err != nil {
		log.WithError(err).Warn("Failed to create additional product indexes")
	}
	log.Info("[INIT] Step 2: Indexes ensured")
}
