package global

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Danh mục, đơn vị, mức rủi ro hợp lệ của sản phẩm
var (
	ProductCategories = []string{"Produce", "Dairy", "Meat", "Bakery", "Frozen", "Beverages"}
	ProductUnits      = []string{"kg", "g", "lb", "oz", "l", "ml", "units", "dozen"}
	SpoilageRisks     = []string{"low", "medium", "high", "critical"}
)

// InitValidator khởi tạo validator và đăng ký các rule tùy chỉnh
func InitValidator() {
	Validate = validator.New()

	// Lỗi trả về dùng tên field theo tag json
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("strong_password", validateStrongPassword)
	_ = Validate.RegisterValidation("product_category", oneOf(ProductCategories))
	_ = Validate.RegisterValidation("product_unit", oneOf(ProductUnits))
	_ = Validate.RegisterValidation("spoilage_risk", oneOf(SpoilageRisks))
}

// validateNoXSS chặn các chuỗi script phổ biến
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	for _, pattern := range []string{
		"<script", "javascript:", "onerror=", "onload=", "onclick=",
		"eval(", "document.cookie", "<iframe", "<object", "<embed",
	} {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateStrongPassword: tối thiểu 8 ký tự, có chữ hoa và ký tự đặc biệt
func validateStrongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword kiểm tra chính sách mật khẩu
func IsStrongPassword(value string) bool {
	if len(value) < 8 {
		return false
	}
	var hasUpper, hasSpecial bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasUpper && hasSpecial
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}
