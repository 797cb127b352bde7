package router

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================================
// LƯU Ý FIBER V3: middleware truyền trực tiếp vào router.Get(path, mw, handler)
// không được gọi trong một số trường hợp. Mọi route cần middleware phải đăng ký
// qua RegisterRouteWithMiddleware (group + .Use()).
// ============================================================================

// CRUDHandler các handler đọc dùng chung cho một collection
type CRUDHandler interface {
	FindOneById(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error
	CountDocuments(c fiber.Ctx) error
}

// CRUDConfig cấu hình các operation được phép cho mỗi collection
type CRUDConfig struct {
	FindById bool // Find By Id
	Paginate bool // Find With Pagination
	Count    bool // Count Documents
}

// ReadOnlyConfig chỉ cho phép đọc
var ReadOnlyConfig = CRUDConfig{FindById: true, Paginate: true, Count: true}

// RoutePrefix chứa prefix cơ bản cho API
type RoutePrefix struct {
	Base string // /api
}

// NewRoutePrefix tạo RoutePrefix mặc định
func NewRoutePrefix() RoutePrefix {
	return RoutePrefix{Base: "/api"}
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app  *fiber.App
	auth fiber.Handler
}

// NewRouter tạo Router, auth là middleware xác thực dùng cho các route cần đăng nhập
func NewRouter(app *fiber.App, auth fiber.Handler) *Router {
	return &Router{app: app, auth: auth}
}

// Auth trả về middleware xác thực
func (r *Router) Auth() fiber.Handler {
	return r.auth
}

// RegisterRouteWithMiddleware đăng ký route với middleware sử dụng .Use() method.
//
// Ví dụ:
//
//	RegisterRouteWithMiddleware(api, "/products", "GET", "/:id", []fiber.Handler{r.Auth()}, h.HandleGet)
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		if mw != nil {
			routeGroup.Use(mw)
		}
	}

	switch method {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodPatch:
		routeGroup.Patch(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	}
}

// RegisterCRUDRoutes đăng ký các route CRUD (chỉ đọc) cho một collection, tất cả yêu cầu đăng nhập
func (r *Router) RegisterCRUDRoutes(router fiber.Router, prefix string, h CRUDHandler, config CRUDConfig) {
	mws := []fiber.Handler{r.auth}
	if config.FindById {
		RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/find-by-id/:id", mws, h.FindOneById)
	}
	if config.Paginate {
		RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/find-with-pagination", mws, h.FindWithPagination)
	}
	if config.Count {
		RegisterRouteWithMiddleware(router, prefix, fiber.MethodGet, "/count", mws, h.CountDocuments)
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export)
type RegisterFunc func(api fiber.Router, r *Router) error

// SetupRoutes thiết lập tất cả route. Caller truyền Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, auth fiber.Handler, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	api := app.Group(prefix.Base)
	r := NewRouter(app, auth)
	for _, reg := range regs {
		if err := reg(api, r); err != nil {
			return err
		}
	}
	return nil
}
