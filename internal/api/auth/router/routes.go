// Package router đăng ký các route thuộc domain auth: đăng ký, đăng nhập, hồ sơ người dùng.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/handler"
	apirouter "github.com/KraitOPP/PerishPro-sub000/internal/api/router"
)

// Register trả về hàm đăng ký route auth và user lên /api
func Register(userHandler *authhdl.UserHandler) apirouter.RegisterFunc {
	return func(api fiber.Router, r *apirouter.Router) error {
		registerAuthRoutes(api, userHandler)
		registerUserRoutes(api, r, userHandler)
		return nil
	}
}

// Các route /auth không cần đăng nhập
func registerAuthRoutes(router fiber.Router, h *authhdl.UserHandler) {
	router.Post("/auth/signup", h.HandleSignUp)
	router.Post("/auth/signin", h.HandleSignIn)
	router.Post("/auth/signout", h.HandleSignOut)
}

func registerUserRoutes(router fiber.Router, r *apirouter.Router, h *authhdl.UserHandler) {
	authOnly := []fiber.Handler{r.Auth()}
	apirouter.RegisterRouteWithMiddleware(router, "/user", fiber.MethodGet, "/profile", authOnly, h.HandleGetProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/user", fiber.MethodGet, "/profile/:id", authOnly, h.HandleGetProfileByID)
	apirouter.RegisterRouteWithMiddleware(router, "/user", fiber.MethodPut, "/profile", authOnly, h.HandleUpdateProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/user", fiber.MethodPut, "/password", authOnly, h.HandleUpdatePassword)
}
