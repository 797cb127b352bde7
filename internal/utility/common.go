package utility

import (
	"runtime/debug"

	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
)

// GoProtect chạy f và bắt panic để goroutine nền không làm sập server
func GoProtect(name string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithFields(map[string]interface{}{
				"task":  name,
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Đã bắt lỗi panic")
		}
	}()
	f()
}
