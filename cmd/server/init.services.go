package main

import (
	"context"
	"time"

	authhdl "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/handler"
	authsvc "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/service"
	basehdl "github.com/KraitOPP/PerishPro-sub000/internal/api/base/handler"
	"github.com/KraitOPP/PerishPro-sub000/internal/api/events"
	producthdl "github.com/KraitOPP/PerishPro-sub000/internal/api/product/handler"
	productmodels "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	productsvc "github.com/KraitOPP/PerishPro-sub000/internal/api/product/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
	"github.com/KraitOPP/PerishPro-sub000/internal/media"
	"github.com/KraitOPP/PerishPro-sub000/internal/mlclient"
	"github.com/KraitOPP/PerishPro-sub000/internal/utility"
)

// Services gom các thành phần đã khởi tạo để dựng router và worker
type Services struct {
	TokenService       *authsvc.TokenService
	UserHandler        *authhdl.UserHandler
	ProductStore       *productsvc.MongoProductStore
	ProductHandler     *producthdl.ProductHandler
	PredictionsHandler *basehdl.BaseHandler[productmodels.PricePrediction, struct{}, struct{}]
	SystemHandler      *basehdl.SystemHandler
	KafkaPublisher     *events.KafkaPublisher // nil khi không cấu hình KAFKA_BROKERS
}

// InitServices khởi tạo service và handler từ cấu hình và registry
func InitServices() *Services {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	// Thu hồi token: Redis nếu có, ngược lại cache trong bộ nhớ
	var revoker authsvc.TokenRevoker
	if global.Redis_Client != nil {
		revoker = authsvc.NewRedisTokenRevoker(global.Redis_Client)
	} else {
		revoker = authsvc.NewMemoryTokenRevoker(utility.NewCache(cfg.JwtExpiry(), 10*time.Minute))
	}
	tokenService := authsvc.NewTokenService(cfg.JwtSecret, cfg.JwtExpiry(), revoker)

	userService, err := authsvc.NewUserServiceFromRegistry(tokenService)
	if err != nil {
		log.Fatalf("Failed to initialize user service: %v", err)
	}
	userHandler := authhdl.NewUserHandler(userService, authhdl.CookieOptions{
		Secure: cfg.CookieSecure,
		MaxAge: cfg.JwtExpiry(),
	})

	store, err := productsvc.NewMongoProductStoreFromRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize product store: %v", err)
	}
	archive, err := productsvc.NewMongoPredictionArchiveFromRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize prediction archive: %v", err)
	}

	var uploader media.Uploader
	if cfg.FirebaseStorageBucket != "" {
		fu, err := media.NewFirebaseUploader(context.Background(), cfg.FirebaseProjectID, cfg.FirebaseStorageBucket, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Firebase Storage, image upload disabled")
		} else {
			uploader = fu
			log.WithField("bucket", cfg.FirebaseStorageBucket).Info("Firebase Storage initialized")
		}
	} else {
		log.Info("FIREBASE_STORAGE_BUCKET not set, image upload disabled")
	}

	predictor := mlclient.NewClient(cfg.MLApiURL, cfg.MLApiTimeout())
	productService := productsvc.NewProductService(store, uploader, archive)
	optimizer := productsvc.NewPriceOptimizer(store, predictor, archive, cfg.PriceHistoryLimit)

	services := &Services{
		TokenService:       tokenService,
		UserHandler:        userHandler,
		ProductStore:       store,
		ProductHandler:     producthdl.NewProductHandler(productService, optimizer),
		PredictionsHandler: basehdl.NewBaseHandler[productmodels.PricePrediction, struct{}, struct{}](archive),
		SystemHandler:      basehdl.NewSystemHandler(global.MongoDB_Session),
	}

	// Sự kiện thay đổi sản phẩm lên Kafka
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		services.KafkaPublisher = events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:  brokers,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}, global.MongoDB_ColNames.Products)
		events.OnDataChanged(services.KafkaPublisher.Handle)
		log.WithFields(map[string]interface{}{
			"brokers": brokers,
			"topic":   cfg.KafkaTopic,
		}).Info("Kafka publisher registered")
	}

	log.Info("Initialized services")
	return services
}
