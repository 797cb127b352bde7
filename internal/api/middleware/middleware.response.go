package middleware

import (
	"errors"

	basehdl "github.com/KraitOPP/PerishPro-sub000/internal/api/base/handler"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"github.com/gofiber/fiber/v3"
)

// HandleErrorResponse trả lỗi cho client theo envelope chuẩn
func HandleErrorResponse(c fiber.Ctx, err error) error {
	return basehdl.WriteError(c, err)
}

// ErrorHandler dùng cho fiber.Config.ErrorHandler: lỗi còn sót lại (404 route, body quá lớn,
// lỗi từ middleware) cũng được trả về theo cùng một envelope
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := common.ErrCodeValidationFormat
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			code = common.ErrCodeDatabaseQuery
		case fiberErr.Code == fiber.StatusTooManyRequests:
			code = common.ErrCodeAuthForbidden
		case fiberErr.Code >= fiber.StatusInternalServerError:
			code = common.ErrCodeInternalServer
		}
		return basehdl.WriteError(c, common.NewError(code, fiberErr.Message, fiberErr.Code, nil))
	}
	return basehdl.WriteError(c, err)
}
