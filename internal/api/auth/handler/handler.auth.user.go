package authhdl

import (
	"context"
	"time"

	authdto "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/dto"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/models"
	basehdl "github.com/KraitOPP/PerishPro-sub000/internal/api/base/handler"
	"github.com/KraitOPP/PerishPro-sub000/internal/api/middleware"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserServicer các thao tác người dùng mà handler cần
type UserServicer interface {
	SignUp(ctx context.Context, input *authdto.SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, input *authdto.SignInInput) (*authdto.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, input *authdto.UpdateProfileInput) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, input *authdto.UpdatePasswordInput) error
}

// CookieOptions cấu hình cookie token
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// UserHandler xử lý các request xác thực và hồ sơ người dùng
type UserHandler struct {
	*basehdl.BaseHandler[models.User, authdto.SignUpInput, authdto.UpdateProfileInput]
	userService UserServicer
	cookie      CookieOptions
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler(userService UserServicer, cookie CookieOptions) *UserHandler {
	return &UserHandler{
		BaseHandler: basehdl.NewBaseHandler[models.User, authdto.SignUpInput, authdto.UpdateProfileInput](nil),
		userService: userService,
		cookie:      cookie,
	}
}

// HandleSignUp đăng ký tài khoản
func (h *UserHandler) HandleSignUp(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.SignUpInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		user, err := h.userService.SignUp(c.Context(), &input)
		if err == nil {
			logger.LogAuth("signup", c, map[string]interface{}{"email": user.Email})
		}
		return h.HandleResponseWithStatus(c, fiber.StatusCreated, "User registered successfully", user, err)
	})
}

// HandleSignIn đăng nhập, trả token và đặt cookie
func (h *UserHandler) HandleSignIn(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.SignInInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		result, err := h.userService.SignIn(c.Context(), &input)
		if err != nil {
			logger.LogAuth("signin_failed", c, map[string]interface{}{"email": input.Email})
			return h.HandleResponse(c, nil, err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     middleware.TokenCookieName,
			Value:    result.Token,
			HTTPOnly: true,
			Secure:   h.cookie.Secure,
			SameSite: fiber.CookieSameSiteStrictMode,
			MaxAge:   int(h.cookie.MaxAge.Seconds()),
		})
		c.Locals(logger.LocalUserID, result.User.ID.Hex())
		logger.LogAuth("signin", c, nil)
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "User logged in successfully", result, nil)
	})
}

// HandleSignOut xóa cookie và thu hồi token đang dùng (nếu có)
func (h *UserHandler) HandleSignOut(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		if token, _ := middleware.ExtractToken(c); token != "" {
			if err := h.userService.SignOut(c.Context(), token); err != nil {
				return h.HandleResponse(c, nil, err)
			}
		}
		c.ClearCookie(middleware.TokenCookieName)
		logger.LogAuth("signout", c, nil)
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "User signed out successfully", nil, nil)
	})
}

// HandleGetProfile hồ sơ của user đang đăng nhập
func (h *UserHandler) HandleGetProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		user, err := h.userService.GetProfile(c.Context(), userID)
		return h.HandleResponse(c, user, err)
	})
}

// HandleGetProfileByID hồ sơ theo id trên URL
func (h *UserHandler) HandleGetProfileByID(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		user, err := h.userService.GetProfile(c.Context(), id)
		return h.HandleResponse(c, user, err)
	})
}

// HandleUpdateProfile cập nhật hồ sơ
func (h *UserHandler) HandleUpdateProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input authdto.UpdateProfileInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		user, err := h.userService.UpdateProfile(c.Context(), userID, &input)
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "Profile updated", user, err)
	})
}

// HandleUpdatePassword đổi mật khẩu
func (h *UserHandler) HandleUpdatePassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input authdto.UpdatePasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		if err := h.userService.UpdatePassword(c.Context(), userID, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}
		logger.LogAuth("password_changed", c, nil)
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "Password updated successfully", nil, nil)
	})
}
