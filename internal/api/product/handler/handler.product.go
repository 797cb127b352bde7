package producthdl

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	basehdl "github.com/KraitOPP/PerishPro-sub000/internal/api/base/handler"
	basemodels "github.com/KraitOPP/PerishPro-sub000/internal/api/base/models"
	productdto "github.com/KraitOPP/PerishPro-sub000/internal/api/product/dto"
	models "github.com/KraitOPP/PerishPro-sub000/internal/api/product/models"
	productsvc "github.com/KraitOPP/PerishPro-sub000/internal/api/product/service"
	"github.com/KraitOPP/PerishPro-sub000/internal/common"
	"github.com/KraitOPP/PerishPro-sub000/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MIME của file xuất
const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductServicer các thao tác sản phẩm mà handler cần
type ProductServicer interface {
	Create(ctx context.Context, input *productdto.ProductCreateInput, image *productsvc.ImageUpload, userID primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, input *productdto.ProductUpdateInput, image *productsvc.ImageUpload, userID primitive.ObjectID) (*models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, q productdto.ListQuery) (*basemodels.PaginateResult[models.Product], error)
	Delete(ctx context.Context, id primitive.ObjectID, force bool, userID primitive.ObjectID) (*models.Product, error)
	UpdateStock(ctx context.Context, id primitive.ObjectID, input *productdto.StockUpdateInput, userID primitive.ObjectID) (*models.Product, error)
	Predictions(ctx context.Context, id primitive.ObjectID, limit int64) ([]models.PricePrediction, error)
	ExportXLSX(ctx context.Context, q productdto.ListQuery) ([]byte, error)
}

// PriceOptimizer tối ưu giá một sản phẩm
type PriceOptimizer interface {
	OptimizePrice(ctx context.Context, productID, userID primitive.ObjectID) (*productdto.OptimizeResult, error)
}

// ProductHandler xử lý các request /products
type ProductHandler struct {
	*basehdl.BaseHandler[models.Product, productdto.ProductCreateInput, productdto.ProductUpdateInput]
	productService ProductServicer
	optimizer      PriceOptimizer
	now            func() time.Time
}

// NewProductHandler tạo instance mới của ProductHandler
func NewProductHandler(productService ProductServicer, optimizer PriceOptimizer) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    basehdl.NewBaseHandler[models.Product, productdto.ProductCreateInput, productdto.ProductUpdateInput](nil),
		productService: productService,
		optimizer:      optimizer,
		now:            time.Now,
	}
}

func productResponse(p *models.Product) *productdto.ProductResponse {
	if p == nil {
		return nil
	}
	resp := productdto.NewProductResponse(*p)
	return &resp
}

// listQuery đọc bộ lọc danh sách từ query string
func (h *ProductHandler) listQuery(c fiber.Ctx) productdto.ListQuery {
	page, limit := h.ParsePagination(c)
	return productdto.ListQuery{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		StoreID:   c.Query("storeId"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}

func isMultipart(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// parseProductBody nhận JSON body hoặc multipart (field data là JSON, field image là ảnh).
// Trả về hàm đóng file ảnh, luôn khác nil.
func (h *ProductHandler) parseProductBody(c fiber.Ctx, input interface{}) (*productsvc.ImageUpload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, h.ParseRequestBody(c, input)
	}

	raw := strings.TrimSpace(c.FormValue("data"))
	if raw != "" && !json.Valid([]byte(raw)) {
		return nil, noop, common.NewError(common.ErrCodeValidationFormat, "Invalid JSON in data field", common.StatusBadRequest, nil)
	}
	if err := h.DecodeAndValidate([]byte(raw), input); err != nil {
		return nil, noop, err
	}

	fh, err := c.FormFile("image")
	if err != nil || fh == nil {
		return nil, noop, nil
	}
	return openImage(fh)
}

func openImage(fh *multipart.FileHeader) (*productsvc.ImageUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, common.NewError(common.ErrCodeValidationFormat, "Cannot read image file", common.StatusBadRequest, err.Error())
	}
	return &productsvc.ImageUpload{
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}

// HandleList danh sách sản phẩm có lọc và phân trang
func (h *ProductHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		result, err := h.productService.List(c.Context(), h.listQuery(c))
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		page := basemodels.NewPaginateResult(productdto.NewProductResponses(result.Items), result.Page, result.Limit, result.Total)
		return h.HandleResponse(c, page, nil)
	})
}

// HandleExport tải danh sách (cùng bộ lọc) dạng XLSX
func (h *ProductHandler) HandleExport(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		data, err := h.productService.ExportXLSX(c.Context(), h.listQuery(c))
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		logger.LogCRUD("export", "product", "", c, map[string]interface{}{"bytes": len(data)})

		filename := fmt.Sprintf("products-%s.xlsx", h.now().UTC().Format("20060102-150405"))
		c.Set(fiber.HeaderContentType, MIMEXLSX)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Status(fiber.StatusOK).Send(data)
	})
}

// HandleGet một sản phẩm
func (h *ProductHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		p, err := h.productService.Get(c.Context(), id)
		return h.HandleResponse(c, productResponse(p), err)
	})
}

// HandleCreate tạo sản phẩm
func (h *ProductHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input productdto.ProductCreateInput
		image, closeImage, err := h.parseProductBody(c, &input)
		defer closeImage()
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}

		p, err := h.productService.Create(c.Context(), &input, image, userID)
		if err == nil {
			logger.LogCRUD("create", "product", p.ID.Hex(), c, map[string]interface{}{"sku": p.SKU})
		}
		return h.HandleResponseWithStatus(c, fiber.StatusCreated, "Product created", productResponse(p), err)
	})
}

// HandleUpdate cập nhật một phần sản phẩm
func (h *ProductHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input productdto.ProductUpdateInput
		image, closeImage, err := h.parseProductBody(c, &input)
		defer closeImage()
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}

		p, err := h.productService.Update(c.Context(), id, &input, image, userID)
		if err == nil {
			logger.LogCRUD("update", "product", id.Hex(), c, nil)
		}
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "Product updated", productResponse(p), err)
	})
}

// HandleDelete xóa mềm, ?force=true thì xóa hẳn
func (h *ProductHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		force, _ := strconv.ParseBool(c.Query("force", "false"))

		p, err := h.productService.Delete(c.Context(), id, force, userID)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		logger.LogCRUD("delete", "product", id.Hex(), c, map[string]interface{}{"force": force})
		if force {
			return h.HandleResponseWithStatus(c, fiber.StatusOK, "Product permanently deleted",
				productdto.DeleteResult{Permanent: true}, nil)
		}
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "Product discontinued (soft deleted)",
			productdto.DeleteResult{Product: productResponse(p)}, nil)
	})
}

// HandleUpdateStock thay đổi số lượng tồn
func (h *ProductHandler) HandleUpdateStock(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		var input productdto.StockUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return h.HandleResponse(c, nil, err)
		}

		p, err := h.productService.UpdateStock(c.Context(), id, &input, userID)
		if err == nil {
			logger.LogCRUD("update_stock", "product", id.Hex(), c, map[string]interface{}{
				"op":       input.Op,
				"quantity": p.Stock.Quantity,
			})
		}
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "Stock updated", productResponse(p), err)
	})
}

// HandleOptimize gọi dịch vụ dự đoán và áp giá mới
func (h *ProductHandler) HandleOptimize(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.CurrentUserID(c)
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}

		result, err := h.optimizer.OptimizePrice(c.Context(), id, userID)
		if err == nil {
			logger.LogCRUD("optimize_price", "product", id.Hex(), c, map[string]interface{}{
				"old_price": result.OldPrice,
				"new_price": result.NewPrice,
			})
		}
		return h.HandleResponseWithStatus(c, fiber.StatusOK, "Price optimized", result, err)
	})
}

// HandlePredictions các bản dự đoán đã lưu của sản phẩm
func (h *ProductHandler) HandlePredictions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return h.HandleResponse(c, nil, err)
		}
		_, limit := h.ParsePagination(c)
		items, err := h.productService.Predictions(c.Context(), id, limit)
		return h.HandleResponse(c, items, err)
	})
}
