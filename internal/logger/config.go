package logger

import (
	"os"
	"strconv"
	"strings"
)

// LogConfig cấu hình hệ thống log
type LogConfig struct {
	Level  string // trace, debug, info, warn, error
	Format string // json, text
	Output string // file, stdout, both

	// Xoay vòng file
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // ngày
	Compress   bool

	LogPath   string
	AppFile   string
	AuditFile string
	ErrorFile string

	// Lọc log, phân cách bởi dấu phẩy, rỗng hoặc "*" là cho phép tất cả
	FilterModules  string
	FilterLogTypes string
}

// DefaultConfig trả về cấu hình mặc định, ghi đè bởi biến môi trường LOG_*
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{
		Level:      "info",
		Format:     "json",
		Output:     "both",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   true,
		LogPath:    "./logs",
		AppFile:    "app.log",
		AuditFile:  "audit.log",
		ErrorFile:  "error.log",
	}

	if env := os.Getenv("GO_ENV"); env == "" || env == "development" {
		cfg.Level = "debug"
		cfg.Format = "text"
	}

	overrideString(&cfg.Level, "LOG_LEVEL", true)
	overrideString(&cfg.Format, "LOG_FORMAT", true)
	overrideString(&cfg.Output, "LOG_OUTPUT", true)
	overrideString(&cfg.LogPath, "LOG_PATH", false)
	overrideString(&cfg.FilterModules, "LOG_FILTER_MODULES", true)
	overrideString(&cfg.FilterLogTypes, "LOG_FILTER_TYPES", true)
	overrideInt(&cfg.MaxSize, "LOG_MAX_SIZE")
	overrideInt(&cfg.MaxBackups, "LOG_MAX_BACKUPS")
	overrideInt(&cfg.MaxAge, "LOG_MAX_AGE")
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Compress = b
		}
	}

	return cfg
}

func overrideString(dst *string, key string, lower bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if lower {
		v = strings.ToLower(v)
	}
	*dst = v
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}
