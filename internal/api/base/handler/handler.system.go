package basehdl

import (
	"context"
	"time"

	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger kiểm tra kết nối tới database
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// SystemHandler xử lý các route hệ thống (health check)
type SystemHandler struct {
	*BaseHandler[interface{}, interface{}, interface{}]
	db Pinger
}

// NewSystemHandler tạo SystemHandler, db thường là *mongo.Client
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler[interface{}, interface{}, interface{}](nil),
		db:          db,
	}
}

// HandleHealth kiểm tra tình trạng API và kết nối MongoDB (timeout 2 giây)
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": fiber.Map{
			"api": "ok",
		},
	}
	services := healthData["services"].(fiber.Map)

	if h.db == nil {
		healthData["status"] = "degraded"
		services["database"] = "not_initialized"
	} else if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		healthData["status"] = "degraded"
		services["database"] = "error"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"success": false,
			"code":    common.StatusServiceUnavailable,
			"message": "Service degraded",
			"data":    healthData,
			"status":  "error",
		})
	} else {
		services["database"] = "ok"
	}

	return h.HandleResponse(c, healthData, nil)
}
