// Package registry quản lý các instance dùng chung (collection MongoDB, client...) theo tên.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrEmptyName trả về khi đăng ký với tên rỗng
var ErrEmptyName = errors.New("registry: name cannot be empty")

// Registry map tên -> item, an toàn khi dùng đồng thời
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry tạo registry rỗng
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Register đăng ký item, ghi đè nếu đã có. isNew=false khi ghi đè.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// GetOrCreate lấy item, tạo bằng creator nếu chưa có. creator chạy khi đang giữ lock.
func (r *Registry[T]) GetOrCreate(name string, creator func() (T, error)) (item T, err error) {
	if name == "" {
		return item, ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[name]; ok {
		return existing, nil
	}
	created, err := creator()
	if err != nil {
		return item, fmt.Errorf("failed to create %s: %w", name, err)
	}
	r.items[name] = created
	return created, nil
}

// Names danh sách tên đã đăng ký, sắp xếp tăng dần
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearAll xóa toàn bộ item, gọi cleanup cho từng item nếu có
func (r *Registry[T]) ClearAll(cleanup func(T) error) (count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if cleanup != nil {
		for name, item := range r.items {
			if cerr := cleanup(item); cerr != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup %s: %w", name, cerr))
			}
		}
	}
	count = len(r.items)
	r.items = make(map[string]T)
	return count, errors.Join(errs...)
}
