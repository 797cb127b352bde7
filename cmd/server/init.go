package main

import (
	"github.com/KraitOPP/PerishPro-sub000/config"
	"github.com/KraitOPP/PerishPro-sub000/internal/database"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initRedis()            // Kết nối Redis nếu có cấu hình
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Users = "users"
	global.MongoDB_ColNames.Products = "products"
	global.MongoDB_ColNames.PricePredictions = "price_predictions"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (đăng ký các custom validator: no_xss, strong_password, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")
}

// initRedis kết nối Redis. Lỗi kết nối không dừng server, token bị thu hồi khi đó lưu trong bộ nhớ.
func initRedis() {
	url := global.MongoDB_ServerConfig.RedisURL
	if url == "" {
		logrus.Info("REDIS_URL not set, using in-memory token revocation")
		return
	}
	client, err := database.ConnectRedis(url)
	if err != nil {
		logrus.WithError(err).Warn("Failed to connect Redis, using in-memory token revocation")
		return
	}
	global.Redis_Client = client
}
