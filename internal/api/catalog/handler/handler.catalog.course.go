// Package cataloghdl chứa HTTP handler cho domain Catalog (course, category, orphan asset).
package cataloghdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "academy/internal/api/base/handler"
	basesvc "academy/internal/api/base/service"
	catalogdto "academy/internal/api/catalog/dto"
	catalogmodels "academy/internal/api/catalog/models"
	catalogsvc "academy/internal/api/catalog/service"
	"academy/internal/common"
	"academy/internal/logger"
)

// CourseHandler xử lý các yêu cầu liên quan đến khóa học.
// Generic CRUD đi qua BaseHandler; các flow orchestration (create/update/delete
// với upload media) đi qua CourseService.
type CourseHandler struct {
	*basehdl.BaseHandler[catalogmodels.Course, catalogdto.CourseCreateInput, catalogdto.CourseUpdateInput]
	CourseService *catalogsvc.CourseService
}

// NewCourseHandler khởi tạo CourseHandler với các collaborator được inject.
func NewCourseHandler(courseService *catalogsvc.CourseService, courses basesvc.BaseServiceMongo[catalogmodels.Course]) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   basehdl.NewBaseHandler[catalogmodels.Course, catalogdto.CourseCreateInput, catalogdto.CourseUpdateInput](courses),
		CourseService: courseService,
	}
}

// HandleCreate xử lý tạo khóa học mới (upload thumbnail + video bài học).
// Route: POST /api/v1/catalog/courses/create
func (h *CourseHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input catalogdto.CourseCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		course, err := h.CourseService.Create(c.Context(), &input)
		if err == nil {
			logger.LogCRUD("create", "course", course.ID.Hex(), c, nil)
		}
		h.HandleResponse(c, course, err)
		return nil
	})
}

// HandleUpdate xử lý cập nhật khóa học: courseData thay thế toàn bộ, asset cũ
// không còn tham chiếu được dọn best-effort và báo cáo trong assetsNotCleanedUp.
// Route: PUT /api/v1/catalog/courses/update/:id
func (h *CourseHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "ID không được để trống trong URL params",
				common.StatusBadRequest, nil,
			))
			return nil
		}

		var input catalogdto.CourseUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		course, notCleaned, err := h.CourseService.Update(c.Context(), id, &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogCRUD("update", "course", id, c, map[string]interface{}{
			"assets_not_cleaned_up": notCleaned,
		})
		h.HandleResponse(c, catalogdto.CourseMutationResponse{
			Course:             course,
			AssetsNotCleanedUp: notCleaned,
		}, nil)
		return nil
	})
}

// HandleDelete xử lý xóa khóa học (asset trước, document sau).
// Route: DELETE /api/v1/catalog/courses/delete, body {"id": "..."}
func (h *CourseHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input catalogdto.CourseDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		notCleaned, err := h.CourseService.Delete(c.Context(), input.ID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogCRUD("delete", "course", input.ID, c, map[string]interface{}{
			"assets_not_cleaned_up": notCleaned,
		})
		h.HandleResponse(c, catalogdto.CourseMutationResponse{
			AssetsNotCleanedUp: notCleaned,
		}, nil)
		return nil
	})
}

// HandleGetAll trả về tất cả khóa học (tên danh mục populate, bài học theo
// thứ tự chuẩn).
// Route: GET /api/v1/catalog/courses
func (h *CourseHandler) HandleGetAll(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		courses, err := h.CourseService.ListAll(c.Context())
		h.HandleResponse(c, courses, err)
		return nil
	})
}

// HandleGetByID trả về một khóa học theo id (read-through cache Redis).
// Route: GET /api/v1/catalog/courses/get/:id
func (h *CourseHandler) HandleGetByID(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id := c.Params("id")
		if id == "" {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "ID không được để trống trong URL params",
				common.StatusBadRequest, nil,
			))
			return nil
		}

		course, err := h.CourseService.GetByID(c.Context(), id)
		h.HandleResponse(c, course, err)
		return nil
	})
}
