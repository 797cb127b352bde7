package authdto

import models "github.com/KraitOPP/PerishPro-sub000/internal/api/auth/models"

// SignUpInput đầu vào đăng ký tài khoản.
type SignUpInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100,no_xss"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

// SignInInput đầu vào đăng nhập.
type SignInInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput cập nhật hồ sơ, field nil thì giữ nguyên.
type UpdateProfileInput struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100,no_xss"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	StoreName    *string `json:"storeName" validate:"omitempty,max=150,no_xss"`
	StoreAddress *string `json:"storeAddress" validate:"omitempty,max=300,no_xss"`
}

// UpdatePasswordInput đổi mật khẩu.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strong_password"`
}

// AuthResult kết quả đăng nhập.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      *models.User `json:"user"`
}
