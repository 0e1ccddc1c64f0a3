package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
// Nó chứa thông tin cơ sở dữ liệu, kho media và các giới hạn hệ thống
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Cổng server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật JWT
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu chính
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting
	// Asset Store Configuration (kho media kiểu Cloudinary)
	AssetStore_BaseURL     string `env:"ASSET_STORE_BASE_URL,required"`                      // Base URL của kho media
	AssetStore_APIKey      string `env:"ASSET_STORE_API_KEY,required"`                       // API key của kho media
	AssetStore_APISecret   string `env:"ASSET_STORE_API_SECRET,required"`                    // API secret dùng để ký request
	AssetStore_ImageFolder string `env:"ASSET_STORE_IMAGE_FOLDER" envDefault:"course-thumbnails"` // Thư mục chứa ảnh thumbnail
	AssetStore_VideoFolder string `env:"ASSET_STORE_VIDEO_FOLDER" envDefault:"course-videos"`     // Thư mục chứa video bài học
	AssetStore_MaxUploadMB int    `env:"ASSET_STORE_MAX_UPLOAD_MB" envDefault:"100"`              // Kích thước tối đa của payload base64 (MB)
	// Redis Configuration (cache đọc course)
	RedisURI         string `env:"REDIS_URI"`                          // URI kết nối Redis (rỗng = tắt cache)
	RedisCacheTTL    int    `env:"REDIS_CACHE_TTL" envDefault:"300"`   // TTL cache course (giây)
	// Worker Configuration
	AssetReconcileInterval int `env:"ASSET_RECONCILE_INTERVAL" envDefault:"300"` // Chu kỳ retry xóa asset mồ côi (giây)
	AssetReconcileMaxTries int `env:"ASSET_RECONCILE_MAX_TRIES" envDefault:"10"` // Số lần retry tối đa trước khi bỏ cuộc
	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
