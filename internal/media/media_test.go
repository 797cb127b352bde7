package media

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedImage(t *testing.T) {
	assert.True(t, IsAllowedImage("image/png"))
	assert.True(t, IsAllowedImage("IMAGE/JPEG; charset=binary"))
	assert.True(t, IsAllowedImage("image/webp"))
	assert.False(t, IsAllowedImage("application/pdf"))
	assert.False(t, IsAllowedImage(""))
}

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
	a := ObjectName(ProductFolder, "image/png", now)
	b := ObjectName(ProductFolder, "image/png", now)

	assert.True(t, strings.HasPrefix(a, "perishpro_products/20240106_"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("demo.appspot.com", "perishpro_products/a b.png", "tok")
	assert.Equal(t, "https://firebasestorage.googleapis.com/v0/b/demo.appspot.com/o/perishpro_products%2Fa%20b.png?alt=media&token=tok", got)
}
