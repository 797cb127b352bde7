package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// String2ObjectID chuyển chuỗi hex thành ObjectID, trả về NilObjectID nếu sai định dạng
func String2ObjectID(id string) primitive.ObjectID {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objectID
}

// ParseObjectID giống String2ObjectID nhưng trả lỗi để handler báo 400
func ParseObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q", id)
	}
	return objectID, nil
}

// ObjectID2String chuyển ObjectID thành chuỗi hex, rỗng nếu là NilObjectID
func ObjectID2String(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}
