// Package router đăng ký các route thuộc domain Catalog: Course, Category, OrphanAsset.
package router

import (
	"github.com/gofiber/fiber/v3"

	cataloghdl "academy/internal/api/catalog/handler"
	"academy/internal/api/middleware"
	apirouter "academy/internal/api/router"
)

// Register trả về hàm đăng ký route catalog lên v1 với các handler được inject.
func Register(
	courseHandler *cataloghdl.CourseHandler,
	categoryHandler *cataloghdl.CategoryHandler,
	orphanHandler *cataloghdl.OrphanAssetHandler,
) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		authMiddleware := middleware.AuthMiddleware()

		// Orchestration routes (upload/dọn dẹp media): ghi cần JWT, đọc công khai
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/courses", "POST", "/create", []fiber.Handler{authMiddleware}, courseHandler.HandleCreate)
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/courses", "PUT", "/update/:id", []fiber.Handler{authMiddleware}, courseHandler.HandleUpdate)
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/courses", "DELETE", "/delete", []fiber.Handler{authMiddleware}, courseHandler.HandleDelete)
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/courses", "GET", "/", nil, courseHandler.HandleGetAll)
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/courses", "GET", "/get/:id", nil, courseHandler.HandleGetByID)

		// Generic CRUD bổ sung (pagination, count, exists, ...)
		r.RegisterCRUDRoutes(v1, "/catalog/courses", courseHandler, apirouter.ReadOnlyConfig)

		// Category: CRUD đầy đủ, riêng delete đi qua handler có FK check
		r.RegisterCRUDRoutes(v1, "/catalog/categories", categoryHandler, apirouter.CRUDConfig{
			InsOne: true, InsMany: false,
			Find: true, FindOne: true, FindById: true,
			FindIds: true, Paginate: true,
			UpdOne: false, UpdMany: false, UpdById: true,
			Count: true, Distinct: true, Exists: true,
		})
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/categories", "DELETE", "/delete/:id", []fiber.Handler{authMiddleware}, categoryHandler.HandleDelete)

		// Orphan asset: chỉ đọc, dành cho admin theo dõi, cần JWT
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/orphan-assets", "GET", "/find", []fiber.Handler{authMiddleware}, orphanHandler.Find)
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/orphan-assets", "GET", "/find-with-pagination", []fiber.Handler{authMiddleware}, orphanHandler.FindWithPagination)
		apirouter.RegisterRouteWithMiddleware(v1, "/catalog/orphan-assets", "GET", "/count", []fiber.Handler{authMiddleware}, orphanHandler.CountDocuments)

		return nil
	}
}
