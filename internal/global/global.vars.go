package global

import (
	"github.com/KraitOPP/PerishPro-sub000/config"
	"github.com/KraitOPP/PerishPro-sub000/internal/registry"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users            string // Người dùng / cửa hàng
	Products         string // Sản phẩm dễ hư hỏng
	PricePredictions string // Lưu trữ kết quả dự đoán giá (TTL)
}

// Các biến toàn cục
var Validate *validator.Validate               // Validator dùng chung
var MongoDB_Session *mongo.Client              // Phiên kết nối MongoDB
var MongoDB_ServerConfig *config.Configuration // Cấu hình server
var MongoDB_ColNames MongoDB_CollectionName    // Tên các collection
var Redis_Client *redis.Client                 // nil khi không cấu hình REDIS_URL

// RegistryCollections chứa các collection đã khởi tạo
var RegistryCollections = registry.NewRegistry[*mongo.Collection]()
