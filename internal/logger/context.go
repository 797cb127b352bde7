package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ContextKey kiểu key cho context
type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
	UserIDKey    ContextKey = "userID"
)

// LocalUserID key Locals chứa user id đã xác thực
const LocalUserID = "user_id"

// WithContext trả về entry kèm các field lấy từ context
func WithContext(ctx context.Context) *logrus.Entry {
	entry := GetAppLogger().WithContext(ctx)
	if v := ctx.Value(RequestIDKey); v != nil {
		entry = entry.WithField("request_id", v)
	}
	if v := ctx.Value(UserIDKey); v != nil {
		entry = entry.WithField("user_id", v)
	}
	return entry
}

// WithRequest trả về entry kèm thông tin request Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}
	if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
		fields["request_id"] = rid
	}
	if uid, ok := c.Locals(LocalUserID).(string); ok && uid != "" {
		fields["user_id"] = uid
	}
	return GetAppLogger().WithFields(fields)
}
