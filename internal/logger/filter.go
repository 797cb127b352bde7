package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const filteredField = "_filtered"

// FilterHook đánh dấu các entry không nằm trong danh sách module/level cho phép.
// AsyncHook sẽ bỏ qua entry đã bị đánh dấu.
type FilterHook struct {
	modules map[string]bool
	levels  map[string]bool
}

// NewFilterHook tạo filter từ cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	return &FilterHook{
		modules: parseFilter(cfg.FilterModules),
		levels:  parseFilter(cfg.FilterLogTypes),
	}
}

// parseFilter trả về nil khi cho phép tất cả
func parseFilter(s string) map[string]bool {
	if s == "" || s == "*" {
		return nil
	}
	out := make(map[string]bool)
	for _, v := range strings.Split(s, ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out[v] = true
		}
	}
	return out
}

// Levels tất cả level
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đánh dấu entry bị lọc
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	if h.levels != nil && !h.levels[entry.Level.String()] {
		entry.Data[filteredField] = true
		return nil
	}
	if h.modules != nil {
		// Entry không gắn module thì luôn được ghi
		if module, ok := entry.Data["module"].(string); ok && module != "" && !h.modules[strings.ToLower(module)] {
			entry.Data[filteredField] = true
		}
	}
	return nil
}
