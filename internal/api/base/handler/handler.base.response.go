package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// ErrorBody dựng body lỗi chuẩn. Lỗi không phải *common.Error bị che thành SYS_001.
func ErrorBody(err error) (int, fiber.Map) {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		body := fiber.Map{
			"success": false,
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"status":  "error",
		}
		// Lỗi nội bộ không lộ nguyên nhân ra client
		if customErr.Details != nil && customErr.Code.Code != common.ErrCodeInternalServer.Code {
			if cause, ok := customErr.Details.(error); ok {
				body["details"] = cause.Error()
			} else {
				body["details"] = customErr.Details
			}
		}
		return customErr.StatusCode, body
	}
	return common.StatusInternalServerError, fiber.Map{
		"success": false,
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"status":  "error",
	}
}

// WriteError ghi lỗi ra response, log lỗi 5xx kèm request id
func WriteError(c fiber.Ctx, err error) error {
	status, body := ErrorBody(err)
	if status >= common.StatusInternalServerError {
		logger.WithRequest(c).WithFields(logrus.Fields{
			"status": status,
			"path":   c.Path(),
		}).WithError(err).Error("Request failed")
	}
	return JSONResponse(c, status, body)
}

// SafeHandler bọc handler với recover để luôn trả response cho client kể cả khi panic
func (h *BaseHandler[T, CreateInput, UpdateInput]) SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithFields(logrus.Fields{
				"panic": fmt.Sprintf("%v", r),
				"stack": string(debug.Stack()),
				"path":  c.Path(),
			}).Error("Panic in handler")
			err = WriteError(c, common.NewInternalError(fmt.Errorf("panic: %v", r)))
		}
	}()
	return handler()
}

// HandleResponse chuẩn hóa response: lỗi theo ErrorBody, thành công trả 200
func (h *BaseHandler[T, CreateInput, UpdateInput]) HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	return h.HandleResponseWithStatus(c, common.StatusOK, common.MsgSuccess, data, err)
}

// HandleCreated giống HandleResponse nhưng trả 201
func (h *BaseHandler[T, CreateInput, UpdateInput]) HandleCreated(c fiber.Ctx, data interface{}, err error) error {
	return h.HandleResponseWithStatus(c, common.StatusCreated, common.MsgCreated, data, err)
}

// HandleResponseWithStatus trả response thành công với status và message tùy chọn
func (h *BaseHandler[T, CreateInput, UpdateInput]) HandleResponseWithStatus(c fiber.Ctx, status int, message string, data interface{}, err error) error {
	if err != nil {
		return WriteError(c, err)
	}
	return JSONResponse(c, status, fiber.Map{
		"success": true,
		"code":    status,
		"message": message,
		"data":    data,
		"status":  "success",
	})
}
