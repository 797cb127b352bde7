package basehdl

import (
	"encoding/json"
	"fmt"

	basemodels "github.com/KraitOPP/PerishPro-sub000/internal/api/base/models"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOneById tìm một document theo ID trong URL params
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		data, err := h.BaseService.FindOneById(c.Context(), id)
		return h.HandleResponse(c, data, err)
	})
}

// FindWithPagination tìm nhiều document với phân trang.
//
// Query params:
// - filter: điều kiện tìm kiếm (JSON, chỉ so sánh bằng và $in/$gte/$lte...)
// - page, limit: phân trang
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindWithPagination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		page, limit := h.ParsePagination(c)
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		data, err := h.BaseService.FindWithPagination(c.Context(), filter, page, limit, opts)
		return h.HandleResponse(c, data, err)
	})
}

// CountDocuments đếm số document khớp filter
func (h *BaseHandler[T, CreateInput, UpdateInput]) CountDocuments(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		count, err := h.BaseService.CountDocuments(c.Context(), filter)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		return h.HandleResponse(c, basemodels.CountResult{TotalCount: count}, nil)
	})
}

// Các operator được phép trong filter từ query string
var allowedOperators = map[string]bool{
	"$eq": true, "$ne": true, "$gt": true, "$gte": true,
	"$lt": true, "$lte": true, "$in": true, "$nin": true, "$exists": true,
}

// ProcessFilter parse filter JSON từ query, chuyển chuỗi ObjectID của các field *Id thành ObjectID
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (bson.M, error) {
	var filter map[string]interface{}
	raw := c.Query("filter", "{}")
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter must be a JSON object: %v", err),
			common.StatusBadRequest,
			nil,
		)
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return normalizeFilter(filter), nil
}

func validateFilter(filter map[string]interface{}) error {
	for key, value := range filter {
		if len(key) > 0 && key[0] == '$' {
			return common.NewValidationError(fmt.Sprintf("Top-level operator %s is not allowed", key), nil)
		}
		if nested, ok := value.(map[string]interface{}); ok {
			for op := range nested {
				if !allowedOperators[op] {
					return common.NewValidationError(fmt.Sprintf("Operator %s is not allowed", op), nil)
				}
			}
		}
	}
	return nil
}

// normalizeFilter: field _id hoặc kết thúc bằng "Id" mang chuỗi hex hợp lệ thì chuyển thành ObjectID
func normalizeFilter(filter map[string]interface{}) bson.M {
	out := bson.M{}
	for key, value := range filter {
		if key == "_id" || (len(key) > 2 && key[len(key)-2:] == "Id") {
			out[key] = toObjectIDs(value)
			continue
		}
		out[key] = value
	}
	return out
}

func toObjectIDs(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			return oid
		}
		return v
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = toObjectIDs(item)
		}
		return out
	case map[string]interface{}:
		out := bson.M{}
		for op, item := range v {
			out[op] = toObjectIDs(item)
		}
		return out
	}
	return value
}
