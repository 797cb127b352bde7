package basehdl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	basesvc "github.com/KraitOPP/PerishPro-sub000/internal/api/base/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/global"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Giới hạn phân trang mặc định
const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 20
	MaxLimit     int64 = 100
)

// BaseHandler là base handler cho các Fiber handler.
// Struct này sử dụng Generic Type để có thể tái sử dụng cho nhiều loại model khác nhau.
//
// Type parameters:
// - T: Kiểu dữ liệu của model
// - CreateInput: Kiểu dữ liệu của input khi tạo mới
// - UpdateInput: Kiểu dữ liệu của input khi cập nhật
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService basesvc.BaseServiceMongo[T] // Có thể nil nếu handler chỉ dùng các helper parse/response
}

// NewBaseHandler tạo mới một BaseHandler với BaseService được cung cấp
func NewBaseHandler[T any, CreateInput any, UpdateInput any](baseService basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{BaseService: baseService}
}

// ParseRequestBody parse và validate dữ liệu từ request body.
// Sử dụng json.Decoder với UseNumber() để xử lý chính xác các số.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	return h.DecodeAndValidate(c.Body(), input)
}

// DecodeAndValidate decode JSON thô vào input rồi validate
func (h *BaseHandler[T, CreateInput, UpdateInput]) DecodeAndValidate(raw []byte, input interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgInvalidFormat, common.StatusBadRequest, err.Error())
	}
	return h.ValidateInput(input)
}

// ValidateInput validate struct bằng global.Validate, trả về chi tiết từng field lỗi
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	if global.Validate == nil {
		return nil
	}
	err := global.Validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]fiber.Map, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, fiber.Map{
				"field":   fe.Field(),
				"rule":    fe.Tag(),
				"message": validationMessage(fe),
			})
		}
		return common.NewValidationError(common.MsgValidationError, details)
	}
	return common.NewValidationError(common.MsgValidationError, err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "strong_password":
		return "Password must be at least 8 characters with one uppercase letter and one special character"
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// ParseObjectIDParam đọc path param và kiểm tra định dạng ObjectID
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseObjectIDParam(c fiber.Ctx, name string) (primitive.ObjectID, error) {
	raw := c.Params(name)
	if raw == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, fmt.Sprintf("%s is required", name), common.StatusBadRequest, nil)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Invalid %s '%s'", name, raw),
			common.StatusBadRequest,
			nil,
		)
	}
	return id, nil
}

// ParsePagination đọc page/limit từ query. Giá trị sai về mặc định, limit bị chặn ở MaxLimit.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParsePagination(c fiber.Ctx) (int64, int64) {
	page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.ParseInt(c.Query("limit", strconv.FormatInt(DefaultLimit, 10)), 10, 64)
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// CurrentUserID lấy user id do middleware xác thực gắn vào context
func (h *BaseHandler[T, CreateInput, UpdateInput]) CurrentUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	raw, ok := c.Locals(logger.LocalUserID).(string)
	if !ok || raw == "" {
		return primitive.NilObjectID, common.ErrTokenMissing
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, common.ErrTokenInvalid
	}
	return id, nil
}
