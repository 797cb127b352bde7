package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// TokenCookieName tên cookie chứa JWT
const TokenCookieName = "token"

// TokenVerifier kiểm tra token và trả về user id
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (userID string, err error)
}

// ExtractToken lấy token từ header Authorization (Bearer) hoặc cookie.
// Header sai định dạng trả về chuỗi rỗng và ok=true để báo token không hợp lệ.
func ExtractToken(c fiber.Ctx) (token string, present bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", true
		}
		return strings.TrimSpace(parts[1]), true
	}
	if cookie := c.Cookies(TokenCookieName); cookie != "" {
		return cookie, true
	}
	return "", false
}

// AuthMiddleware middleware xác thực cho Fiber. Thành công thì gắn user id vào Locals.
func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, present := ExtractToken(c)
		if !present {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("[AUTH] Missing token")
			return HandleErrorResponse(c, common.ErrTokenMissing)
		}
		if token == "" {
			return HandleErrorResponse(c, common.ErrTokenInvalid)
		}

		userID, err := verifier.VerifyToken(c.Context(), token)
		if err != nil {
			var appErr *common.Error
			if !errors.As(err, &appErr) {
				err = common.ErrTokenInvalid
			}
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Debug("[AUTH] Token rejected")
			return HandleErrorResponse(c, err)
		}

		c.Locals(logger.LocalUserID, userID)
		return c.Next()
	}
}
