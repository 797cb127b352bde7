package main

import (
	"fmt"
	"strings"
	"time"

	authrouter "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/router"
	"github.com/KraitOPP/PerishPro-sub000/internal/api/middleware"
	productrouter "github.com/KraitOPP/PerishPro-sub000/internal/api/product/router"
	apirouter "github.com/KraitOPP/PerishPro-sub000/internal/api/router"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
)

// healthPath đường dẫn health check, bỏ qua rate limit và recover
const healthPath = "/api/health"

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp(services *Services) *fiber.App {
	cfg := global.MongoDB_ServerConfig

	bodyLimitMB := cfg.BodyLimitMB
	if bodyLimitMB <= 0 {
		bodyLimitMB = 10
	}

	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CẤU HÌNH CƠ BẢN
		// =========================================
		AppName:       "PerishPro API",
		ServerHeader:  "PerishPro API",
		CaseSensitive: true,
		UnescapePath:  true,

		// =========================================
		// 2. CẤU HÌNH PERFORMANCE
		// =========================================
		BodyLimit:       bodyLimitMB * 1024 * 1024, // Ảnh sản phẩm đi qua multipart
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		// =========================================
		// 3. CẤU HÌNH TIMEOUT
		// =========================================
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// =========================================
		// 4. CẤU HÌNH ERROR HANDLING
		// =========================================
		ErrorHandler: middleware.ErrorHandler,
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID Middleware
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	// 2. CORS Middleware, đặt trước các middleware khác để xử lý preflight
	var allowOrigins []string
	if cfg.CORS_Origins == "*" {
		allowOrigins = []string{"*"}
	} else {
		for _, origin := range strings.Split(cfg.CORS_Origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
		},
		// Wildcard origin không đi cùng credentials
		AllowCredentials: cfg.CORS_AllowCredentials && cfg.CORS_Origins != "*",
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security Headers Middleware
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.EnableTLS {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	})

	// 4. Rate Limiting Middleware
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return middleware.HandleErrorResponse(c, common.NewError(
					common.ErrCodeAuthForbidden,
					"Too many requests, please try again later",
					fiber.StatusTooManyRequests,
					nil,
				))
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic":  fmt.Sprintf("%v", e),
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("Panic recovered")
		},
	}))

	// Health check không cần đăng nhập
	app.Get(healthPath, services.SystemHandler.HandleHealth)

	err := apirouter.SetupRoutes(app, middleware.AuthMiddleware(services.TokenService),
		authrouter.Register(services.UserHandler),
		productrouter.Register(services.ProductHandler, services.PredictionsHandler),
	)
	if err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	return app
}
