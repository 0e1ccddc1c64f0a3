// Package cataloghdl - CategoryHandler (xem handler.catalog.course.go cho package doc).
package cataloghdl

import (
	"github.com/gofiber/fiber/v3"

	basehdl "academy/internal/api/base/handler"
	basesvc "academy/internal/api/base/service"
	catalogdto "academy/internal/api/catalog/dto"
	catalogmodels "academy/internal/api/catalog/models"
	catalogsvc "academy/internal/api/catalog/service"
	"academy/internal/common"
	"academy/internal/logger"
)

// CategoryHandler xử lý các yêu cầu liên quan đến danh mục khóa học.
// CRUD thường đi qua BaseHandler; riêng xóa phải qua CategoryService để chặn
// danh mục còn khóa học tham chiếu.
type CategoryHandler struct {
	*basehdl.BaseHandler[catalogmodels.Category, catalogdto.CategoryCreateInput, catalogdto.CategoryUpdateInput]
	CategoryService *catalogsvc.CategoryService
}

// NewCategoryHandler khởi tạo CategoryHandler với các collaborator được inject.
func NewCategoryHandler(categoryService *catalogsvc.CategoryService, categories basesvc.BaseServiceMongo[catalogmodels.Category]) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     basehdl.NewBaseHandler[catalogmodels.Category, catalogdto.CategoryCreateInput, catalogdto.CategoryUpdateInput](categories),
		CategoryService: categoryService,
	}
}

// HandleDelete xóa danh mục, từ chối khi còn khóa học tham chiếu (409).
// Route: DELETE /api/v1/catalog/categories/delete/:id
func (h *CategoryHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "ID không được để trống trong URL params",
				common.StatusBadRequest, nil,
			))
			return nil
		}

		if err := h.CategoryService.Delete(c.Context(), id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogCRUD("delete", "category", id, c, nil)
		h.HandleResponse(c, nil, nil)
		return nil
	})
}
