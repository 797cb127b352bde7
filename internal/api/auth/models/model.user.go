// Package models - model người dùng (User) thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User một tài khoản cửa hàng. Password là bcrypt hash, không bao giờ trả ra JSON.
type User struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email" index:"unique"`
	Password     string             `json:"-" bson:"password"`
	Phone        string             `json:"phone" bson:"phone"`
	StoreName    string             `json:"storeName" bson:"storeName"`
	StoreAddress string             `json:"storeAddress" bson:"storeAddress"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt"`
}
