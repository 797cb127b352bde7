package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy PerishPro API
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:":8080"` // Địa chỉ server

	// MongoDB
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`       // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"perishpro"` // Tên cơ sở dữ liệu

	// Xác thực
	JwtSecret      string `env:"JWT_SECRET,required"`
	JwtExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"168"` // 7 ngày
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`  // Bật cờ Secure cho cookie token

	// HTTP
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	BodyLimitMB           int    `env:"BODY_LIMIT_MB" envDefault:"10"` // Giới hạn body, ảnh sản phẩm đi qua multipart

	// Dịch vụ dự đoán giá
	MLApiURL            string `env:"ML_API_URL" envDefault:"http://localhost:8000"`
	MLApiTimeoutSeconds int    `env:"ML_API_TIMEOUT_SECONDS" envDefault:"10"`
	PriceHistoryLimit   int    `env:"PRICE_HISTORY_LIMIT" envDefault:"20"`

	// Redis (tùy chọn, để trống thì dùng danh sách thu hồi token trong bộ nhớ)
	RedisURL string `env:"REDIS_URL"`

	// Kafka (tùy chọn, để trống thì không publish sự kiện)
	KafkaBrokers  string `env:"KAFKA_BROKERS"`
	KafkaTopic    string `env:"KAFKA_TOPIC" envDefault:"perishpro.products"`
	KafkaUsername string `env:"KAFKA_USERNAME"`
	KafkaPassword string `env:"KAFKA_PASSWORD"`

	// Firebase Storage (tùy chọn, để trống thì upload ảnh bị từ chối)
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseStorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"` // Đường dẫn đến service account JSON

	// Worker làm mới hạn sử dụng
	ExpiryWorkerEnabled         bool `env:"EXPIRY_WORKER_ENABLED" envDefault:"true"`
	ExpiryWorkerIntervalMinutes int  `env:"EXPIRY_WORKER_INTERVAL_MINUTES" envDefault:"60"`
	ExpiryWorkerBatchSize       int  `env:"EXPIRY_WORKER_BATCH_SIZE" envDefault:"200"`

	// TLS/HTTPS
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// JwtExpiry thời gian sống của token
func (c *Configuration) JwtExpiry() time.Duration {
	return time.Duration(c.JwtExpiryHours) * time.Hour
}

// MLApiTimeout timeout cho một lần gọi dịch vụ dự đoán
func (c *Configuration) MLApiTimeout() time.Duration {
	return time.Duration(c.MLApiTimeoutSeconds) * time.Second
}

// KafkaBrokerList tách danh sách broker phân cách bởi dấu phẩy
func (c *Configuration) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// getEnvPath trả về đường dẫn đến file env dựa trên GO_ENV
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// logger chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Đi ngược lên cho tới khi gặp config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) rồi từ biến môi trường.
// Trả về nil nếu thiếu biến bắt buộc.
func NewConfig() *Configuration {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v (dùng biến môi trường hệ thống)\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
