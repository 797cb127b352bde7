// Package events phát sự kiện khi dữ liệu thay đổi qua các service CRUD.
// Bên tiêu thụ (publisher Kafka, ...) đăng ký qua OnDataChanged.
package events

import (
	"context"
	"sync"

	"github.com/KraitOPP/PerishPro-sub000/internal/logger"
)

// Các loại thao tác CRUD
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// DataChangeEvent mô tả một thay đổi. Document là bản ghi sau khi đổi (bản cũ nếu delete).
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	DocumentID     string
	Document       interface{}
}

// DataChangeHandler xử lý sự kiện thay đổi dữ liệu
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	handlers   []DataChangeHandler
	handlersMu sync.RWMutex
	inflight   sync.WaitGroup
)

// OnDataChanged đăng ký handler, gọi lúc khởi động
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = append(handlers, h)
}

// EmitDataChanged phát sự kiện. Mỗi handler chạy trong goroutine riêng với context tách khỏi request.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := make([]DataChangeHandler, len(handlers))
	copy(list, handlers)
	handlersMu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, h := range list {
		inflight.Add(1)
		go func(fn DataChangeHandler) {
			defer inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.GetErrorLogger().WithFields(map[string]interface{}{
						"collection": e.CollectionName,
						"operation":  e.Operation,
						"panic":      r,
					}).Error("Data change handler panic")
				}
			}()
			fn(detached, e)
		}(h)
	}
}

// Wait chờ các handler đang chạy kết thúc, dùng khi tắt server
func Wait() {
	inflight.Wait()
}

// reset xóa toàn bộ handler (dùng trong test)
func reset() {
	handlersMu.Lock()
	handlers = nil
	handlersMu.Unlock()
}
