package main

import (
	"context"
	"time"

	"academy/config"
	"academy/internal/cache"
	catalogmodels "academy/internal/api/catalog/models"
	enrollmentmodels "academy/internal/api/enrollment/models"
	"academy/internal/database"
	"academy/internal/global"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// InitGlobal khởi tạo tất cả các biến toàn cục theo thứ tự phụ thuộc:
// tên collection -> validator -> config -> MongoDB -> Redis cache.
func InitGlobal() {
	initColNames()
	initValidator()
	initConfig()
	initDatabase_MongoDB()
	initRedisCache()
}

// initColNames khởi tạo tên các collection trong database
func initColNames() {
	// Catalog Module Collections
	global.MongoDB_ColNames.Courses = "catalog_courses"
	global.MongoDB_ColNames.Categories = "catalog_categories"
	global.MongoDB_ColNames.OrphanAssets = "catalog_orphan_assets"

	// Enrollment Module Collections
	global.MongoDB_ColNames.Enrollments = "enrollment_enrollments"
	global.MongoDB_ColNames.Progress = "enrollment_progress"

	logrus.Info("Khởi tạo tên collections thành công.")
}

// initValidator đăng ký các custom validator (no_xss, data_uri, course_level, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Khởi tạo validator thành công.")
}

// initConfig đọc cấu hình từ file môi trường vào biến toàn cục
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatal("Khởi tạo không thành công file cấu hình.")
	}
	logrus.Info("Khởi tạo thành công file cấu hình.")
}

// initDatabase_MongoDB kết nối MongoDB, đảm bảo collections tồn tại và tạo index
// cho tất cả các model từ tag `index` khai báo trên struct.
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Lỗi kết nối tới MongoDB: %v", err)
	}
	logrus.Info("Kết nối tới MongoDB thành công.")

	err = database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	if err != nil {
		logrus.Fatalf("Lỗi khởi tạo database và collections: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)

	// Danh sách model cần tạo index, theo từng collection
	indexTargets := []struct {
		colName string
		model   interface{}
	}{
		{global.MongoDB_ColNames.Courses, catalogmodels.Course{}},
		{global.MongoDB_ColNames.Categories, catalogmodels.Category{}},
		{global.MongoDB_ColNames.OrphanAssets, catalogmodels.OrphanAsset{}},
		{global.MongoDB_ColNames.Enrollments, enrollmentmodels.Enrollment{}},
		{global.MongoDB_ColNames.Progress, enrollmentmodels.Progress{}},
	}

	for _, target := range indexTargets {
		if err := database.CreateIndexes(ctx, db.Collection(target.colName), target.model); err != nil {
			logrus.Fatalf("Lỗi tạo index cho collection %s: %v", target.colName, err)
		}
	}

	logrus.Info("Khởi tạo index cho các collection thành công.")
}

// initRedisCache khởi tạo Redis cache đọc course. Cache là optional:
// lỗi kết nối chỉ warn, hệ thống chạy tiếp không có cache.
func initRedisCache() {
	redisClient, err := cache.NewClient(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Warnf("Không kết nối được Redis cache, chạy không có cache: %v", err)
		global.RedisCache = &cache.Client{}
		return
	}
	global.RedisCache = redisClient

	if redisClient.Enabled() {
		logrus.Info("Kết nối tới Redis cache thành công.")
	} else {
		logrus.Info("Redis cache không được cấu hình, bỏ qua.")
	}
}

// getDatabase trả về database chính của ứng dụng từ phiên kết nối hiện tại.
func getDatabase() *mongo.Database {
	return global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)
}
