// Script tính lại daysToExpiry, shelfLife, profitMargin và status cho toàn bộ sản phẩm
// chưa discontinued. Chạy sau khi import dữ liệu cũ hoặc khi worker bị tắt lâu ngày.
//
// Chạy: go run scripts/backfill_product_lifecycle.go
// Đổi kích thước batch: go run scripts/backfill_product_lifecycle.go 500
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/KraitOPP/PerishPro-sub000/config"
	basesvc "github.com/KraitOPP/PerishPro-sub000/internal/api/base/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	productsvc "github.com/KraitOPP/PerishPro-sub000/internal/api/product/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/database"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
	"github.com/KraitOPP/PerishPro-sub000/internal/worker"
)

const productsCollection = "products"

func main() {
	fmt.Println("=== Backfill vòng đời sản phẩm ===")

	if err := logger.Init(nil); err != nil {
		log.Fatalf("Không thể khởi tạo logger: %v", err)
	}

	cfg := config.NewConfig()
	if cfg == nil {
		log.Fatal("Không thể đọc cấu hình từ file env")
	}

	batchSize := cfg.ExpiryWorkerBatchSize
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			log.Fatalf("Batch size không hợp lệ: %s", os.Args[1])
		}
		batchSize = n
	}

	client, err := database.GetInstance(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối với MongoDB: %v", err)
	}
	defer database.CloseInstance(client)

	collection := client.Database(cfg.MongoDB_DBName).Collection(productsCollection)
	store := productsvc.NewMongoProductStore(basesvc.NewBaseServiceMongo[models.Product](collection))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	updated, err := worker.NewExpiryRefreshWorker(store, time.Hour, batchSize).RunOnce(ctx)
	if err != nil {
		log.Fatalf("Backfill dừng sau %d sản phẩm: %v", updated, err)
	}

	fmt.Printf("✓ Đã cập nhật %d sản phẩm trong %s\n", updated, time.Since(start).Round(time.Millisecond))
}
