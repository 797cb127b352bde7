// Package models - Claims JWT thuộc domain auth.
package models

import "github.com/golang-jwt/jwt/v5"

// Claims dữ liệu mã hóa trong JWT. ID (jti) dùng để thu hồi token khi đăng xuất.
type Claims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}
