package common

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mã HTTP dùng trong toàn bộ API
const (
	StatusOK        = http.StatusOK
	StatusCreated   = http.StatusCreated
	StatusNoContent = http.StatusNoContent

	StatusBadRequest      = http.StatusBadRequest
	StatusUnauthorized    = http.StatusUnauthorized
	StatusForbidden       = http.StatusForbidden
	StatusNotFound        = http.StatusNotFound
	StatusConflict        = http.StatusConflict
	StatusTooManyRequests = http.StatusTooManyRequests

	StatusInternalServerError = http.StatusInternalServerError
	StatusBadGateway          = http.StatusBadGateway
	StatusServiceUnavailable  = http.StatusServiceUnavailable
	StatusGatewayTimeout      = http.StatusGatewayTimeout
)

// Thông báo trả về cho client
const (
	MsgSuccess        = "Success"
	MsgCreated        = "Created successfully"
	MsgInternalError  = "Internal server error"
	MsgTooManyRequest = "Too many requests, please try again later"

	MsgTokenMissing = "Access denied. No token provided."
	MsgTokenInvalid = "Invalid or expired token"

	MsgValidationError = "Validation failed"
	MsgInvalidFormat   = "Invalid request body"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Nhóm lỗi
	SubCategory string // Nhóm con
	Description string
}

// Các mã lỗi theo nhóm
var (
	ErrCodeInternalServer = ErrorCode{Code: "SYS_001", Category: "System", SubCategory: "Internal", Description: "Lỗi hệ thống nội bộ"}

	ErrCodeAuthToken       = ErrorCode{Code: "AUTH_001", Category: "Authentication", SubCategory: "Token", Description: "Token không hợp lệ hoặc hết hạn"}
	ErrCodeAuthCredentials = ErrorCode{Code: "AUTH_002", Category: "Authentication", SubCategory: "Credentials", Description: "Thiếu hoặc sai thông tin đăng nhập"}
	ErrCodeAuthForbidden   = ErrorCode{Code: "AUTH_003", Category: "Authentication", SubCategory: "Forbidden", Description: "Không có quyền truy cập"}

	ErrCodeValidationInput  = ErrorCode{Code: "VAL_001", Category: "Validation", SubCategory: "Input", Description: "Dữ liệu đầu vào không hợp lệ"}
	ErrCodeValidationFormat = ErrorCode{Code: "VAL_002", Category: "Validation", SubCategory: "Format", Description: "Sai định dạng dữ liệu"}

	ErrCodeDatabase           = ErrorCode{Code: "DB", Category: "Database", SubCategory: "General", Description: "Lỗi cơ sở dữ liệu chung"}
	ErrCodeDatabaseConnection = ErrorCode{Code: "DB_001", Category: "Database", SubCategory: "Connection", Description: "Lỗi kết nối cơ sở dữ liệu"}
	ErrCodeDatabaseQuery      = ErrorCode{Code: "DB_002", Category: "Database", SubCategory: "Query", Description: "Lỗi truy vấn hoặc không tìm thấy dữ liệu"}
	ErrCodeDatabaseConflict   = ErrorCode{Code: "DB_003", Category: "Database", SubCategory: "Conflict", Description: "Trùng dữ liệu hoặc xung đột phiên bản"}

	ErrCodeBusinessState = ErrorCode{Code: "BIZ_001", Category: "Business", SubCategory: "State", Description: "Điều kiện nghiệp vụ chưa thỏa"}

	ErrCodeUpstream = ErrorCode{Code: "UPS_001", Category: "Upstream", SubCategory: "Prediction", Description: "Dịch vụ bên ngoài lỗi hoặc trả dữ liệu sai"}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin thêm (có thể nil)
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is so khớp theo mã lỗi và message, dùng cho errors.Is với các lỗi mẫu bên dưới
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// NewValidationError lỗi dữ liệu đầu vào (400)
func NewValidationError(message string, details any) error {
	return NewError(ErrCodeValidationInput, message, StatusBadRequest, details)
}

// NewNotFoundError lỗi không tìm thấy (404)
func NewNotFoundError(message string) error {
	return NewError(ErrCodeDatabaseQuery, message, StatusNotFound, nil)
}

// NewConflictError lỗi trùng dữ liệu (409)
func NewConflictError(message string) error {
	return NewError(ErrCodeDatabaseConflict, message, StatusConflict, nil)
}

// NewInvalidStateError lỗi điều kiện nghiệp vụ chưa thỏa (400)
func NewInvalidStateError(message string) error {
	return NewError(ErrCodeBusinessState, message, StatusBadRequest, nil)
}

// NewUpstreamError lỗi từ dịch vụ bên ngoài. status <= 0 thì dùng 502.
func NewUpstreamError(status int, message string, details any) error {
	if status <= 0 {
		status = StatusBadGateway
	}
	return NewError(ErrCodeUpstream, message, status, details)
}

// NewInternalError bọc lỗi không mong muốn, message trả client luôn chung chung
func NewInternalError(cause error) error {
	return NewError(ErrCodeInternalServer, MsgInternalError, StatusInternalServerError, cause)
}

// Các lỗi mẫu
var (
	ErrTokenMissing       = NewError(ErrCodeAuthCredentials, MsgTokenMissing, StatusUnauthorized, nil)
	ErrTokenInvalid       = NewError(ErrCodeAuthToken, MsgTokenInvalid, StatusUnauthorized, nil)
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Invalid credentials", StatusUnauthorized, nil)
	ErrForbidden          = NewError(ErrCodeAuthForbidden, "Forbidden", StatusForbidden, nil)

	ErrInvalidFormat = NewError(ErrCodeValidationFormat, MsgInvalidFormat, StatusBadRequest, nil)

	ErrNotFound        = NewError(ErrCodeDatabaseQuery, "Resource not found", StatusNotFound, nil)
	ErrDuplicate       = NewError(ErrCodeDatabaseConflict, "Resource already exists", StatusConflict, nil)
	ErrVersionConflict = NewError(ErrCodeDatabaseConflict, "Resource was modified concurrently, please retry", StatusConflict, nil)

	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, "Database connection error", StatusServiceUnavailable, nil)
	ErrMongoTimeout    = NewError(ErrCodeDatabaseConnection, "Database timeout", StatusGatewayTimeout, nil)
)

// ConvertMongoError chuyển lỗi của driver MongoDB sang *Error của hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Đã là lỗi hệ thống thì giữ nguyên
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	case mongo.IsTimeout(err):
		return ErrMongoTimeout
	case mongo.IsNetworkError(err):
		return ErrMongoConnection
	}

	return NewError(ErrCodeDatabase, "Database error", StatusInternalServerError, err.Error())
}

// StatusOf trả về HTTP status của lỗi, mặc định 500
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.StatusCode > 0 {
		return appErr.StatusCode
	}
	return StatusInternalServerError
}
