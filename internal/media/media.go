// Package media upload ảnh sản phẩm lên bộ lưu trữ ngoài.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Thư mục chứa ảnh sản phẩm
const ProductFolder = "perishpro_products"

// Kích thước ảnh tối đa
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader lưu file và trả về URL công khai
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// IsAllowedImage kiểm tra content type ảnh được hỗ trợ
func IsAllowedImage(contentType string) bool {
	_, ok := imageExtensions[normalizeContentType(contentType)]
	return ok
}

// ObjectName tạo tên object duy nhất trong folder, giữ phần mở rộng theo content type
func ObjectName(folder, contentType string, now time.Time) string {
	ext := imageExtensions[normalizeContentType(contentType)]
	return path.Join(folder, fmt.Sprintf("%s_%s%s", now.UTC().Format("20060102"), uuid.NewString(), ext))
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
