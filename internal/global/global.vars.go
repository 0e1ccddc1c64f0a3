package global

import (
	"academy/config"
	"academy/internal/cache"
	"academy/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	// Catalog Module Collections (tiền tố catalog_)
	Courses      string // Tên collection cho khóa học
	Categories   string // Tên collection cho danh mục khóa học
	OrphanAssets string // Tên collection cho asset mồ côi chờ dọn dẹp

	// Enrollment Module Collections (tiền tố enrollment_)
	Enrollments string // Tên collection cho ghi danh khóa học
	Progress    string // Tên collection cho tiến độ học tập
}

// Các biến toàn cục
var Validate *validator.Validate                                           // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                          // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                             // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName) // Tên các collection
var RedisCache *cache.Client                                               // Cache đọc trên Redis (nil-safe khi tắt)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
