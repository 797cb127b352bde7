// Package router đăng ký các route của domain product và kho lưu dự đoán giá.
package router

import (
	"github.com/gofiber/fiber/v3"

	producthdl "github.com/KraitOPP/PerishPro-sub000/internal/api/product/handler"
	apirouter "github.com/KraitOPP/PerishPro-sub000/internal/api/router"
)

// Register trả về hàm đăng ký route /products và /predictions.
// predictions có thể nil khi không cấu hình kho lưu dự đoán.
func Register(h *producthdl.ProductHandler, predictions apirouter.CRUDHandler) apirouter.RegisterFunc {
	return func(api fiber.Router, r *apirouter.Router) error {
		registerProductRoutes(api, r, h)
		if predictions != nil {
			r.RegisterCRUDRoutes(api, "/predictions", predictions, apirouter.ReadOnlyConfig)
		}
		return nil
	}
}

func registerProductRoutes(router fiber.Router, r *apirouter.Router, h *producthdl.ProductHandler) {
	authOnly := []fiber.Handler{r.Auth()}
	const prefix = "/products"

	// /export phải đăng ký trước /:id
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/export", authOnly, h.HandleExport)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/", authOnly, h.HandleList)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodPost, "/", authOnly, h.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/:id", authOnly, h.HandleGet)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodPut, "/:id", authOnly, h.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodDelete, "/:id", authOnly, h.HandleDelete)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodPut, "/:id/stock", authOnly, h.HandleUpdateStock)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodPost, "/:id/optimize", authOnly, h.HandleOptimize)
	apirouter.RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/:id/predictions", authOnly, h.HandlePredictions)
}
