package utility

import (
	"sync"
	"time"
)

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// Cache lưu giá trị trong bộ nhớ với thời hạn riêng cho từng key
type Cache struct {
	items    map[string]cacheItem
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewCache tạo cache với ttl mặc định và chu kỳ dọn dẹp cleanup (0 = không dọn nền)
func NewCache(ttl, cleanup time.Duration) *Cache {
	c := &Cache{
		items:    make(map[string]cacheItem),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanup > 0 {
		go c.cleanupLoop(cleanup)
	}
	return c
}

// Set lưu giá trị với ttl mặc định
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL lưu giá trị với ttl riêng, ttl <= 0 là không hết hạn
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	item := cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
}

// Get lấy giá trị còn hạn
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.expired(item) {
		return nil, false
	}
	return item.value, true
}

// Len số key hiện có, kể cả key đã hết hạn nhưng chưa dọn
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop dừng goroutine dọn dẹp
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Cache) expired(item cacheItem) bool {
	return !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt)
}

// purge xóa các key đã hết hạn
func (c *Cache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, item := range c.items {
		if c.expired(item) {
			delete(c.items, k)
		}
	}
}

func (c *Cache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.purge()
		case <-c.stopChan:
			return
		}
	}
}
