package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// LogAction ghi một hành động vào audit log
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	fields := logrus.Fields{
		"action":     action,
		"ip":         c.IP(),
		"user_agent": c.Get(fiber.HeaderUserAgent),
		"details":    details,
	}
	if uid, ok := c.Locals(LocalUserID).(string); ok {
		fields["user_id"] = uid
	}
	if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
		fields["request_id"] = rid
	}
	GetAuditLogger().WithFields(fields).Info("Audit log")
}

// LogCRUD ghi thao tác CRUD trên một tài nguyên
func LogCRUD(operation, resourceType, resourceID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["resource_type"] = resourceType
	details["resource_id"] = resourceID
	LogAction("crud_"+operation, c, details)
}

// LogAuth ghi các thao tác đăng nhập, đăng ký, đăng xuất
func LogAuth(action string, c fiber.Ctx, details map[string]interface{}) {
	LogAction("auth_"+action, c, details)
}
