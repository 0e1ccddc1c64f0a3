package main

import (
	"context"
	"time"

	catalogmodels "academy/internal/api/catalog/models"
	basesvc "academy/internal/api/base/service"
	"academy/internal/global"
	"academy/internal/logger"
)

// defaultCategories là các danh mục khóa học mặc định được seed khi hệ thống
// chạy lần đầu. Upsert theo tên nên chạy lại nhiều lần không tạo trùng.
var defaultCategories = []catalogmodels.Category{
	{Name: "Lập trình Web", Description: "Frontend, backend và fullstack web development"},
	{Name: "Lập trình Mobile", Description: "Phát triển ứng dụng iOS, Android và cross-platform"},
	{Name: "Data Science", Description: "Phân tích dữ liệu, machine learning và AI"},
	{Name: "DevOps", Description: "CI/CD, container, cloud và vận hành hệ thống"},
	{Name: "Thiết kế", Description: "UI/UX, đồ họa và thiết kế sản phẩm"},
}

// InitDefaultData seed dữ liệu mặc định cho hệ thống.
// Chỉ seed danh mục khi collection còn trống để không đè lên dữ liệu admin đã sửa.
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	categories := basesvc.NewBaseServiceMongo[catalogmodels.Category](mustCollection(global.MongoDB_ColNames.Categories))

	count, err := categories.CountDocuments(ctx, map[string]interface{}{})
	if err != nil {
		log.Warnf("Không đếm được danh mục, bỏ qua seed: %v", err)
		return
	}
	if count > 0 {
		log.Infof("✅ [INIT] Đã có %d danh mục, bỏ qua seed dữ liệu mặc định", count)
		return
	}

	log.Info("🔄 [INIT] Seeding default categories...")
	seeded := 0
	for _, category := range defaultCategories {
		if _, err := categories.Upsert(ctx, map[string]interface{}{"name": category.Name}, category); err != nil {
			log.Warnf("Không seed được danh mục %s: %v", category.Name, err)
			continue
		}
		seeded++
	}
	log.Infof("✅ [INIT] InitDefaultData completed: %d/%d categories seeded", seeded, len(defaultCategories))
}
