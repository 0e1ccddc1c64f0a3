// Package enrollmenthdl chứa HTTP handler cho domain Enrollment.
package enrollmenthdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "academy/internal/api/base/handler"
	basesvc "academy/internal/api/base/service"
	enrollmentdto "academy/internal/api/enrollment/dto"
	enrollmentmodels "academy/internal/api/enrollment/models"
	enrollmentsvc "academy/internal/api/enrollment/service"
	"academy/internal/common"
	"academy/internal/logger"
)

// EnrollmentHandler xử lý các yêu cầu ghi danh và tiến độ học tập.
// Tất cả route đều sau auth middleware; userId lấy từ JWT trong context.
type EnrollmentHandler struct {
	*basehdl.BaseHandler[enrollmentmodels.Enrollment, enrollmentdto.EnrollInput, enrollmentdto.EnrollInput]
	EnrollmentService *enrollmentsvc.EnrollmentService
}

// NewEnrollmentHandler khởi tạo EnrollmentHandler với các collaborator được inject.
func NewEnrollmentHandler(enrollmentService *enrollmentsvc.EnrollmentService, enrollments basesvc.BaseServiceMongo[enrollmentmodels.Enrollment]) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       basehdl.NewBaseHandler[enrollmentmodels.Enrollment, enrollmentdto.EnrollInput, enrollmentdto.EnrollInput](enrollments),
		EnrollmentService: enrollmentService,
	}
}

// userIDFromContext lấy userId do auth middleware set vào context.
func (h *EnrollmentHandler) userIDFromContext(c fiber.Ctx) (string, error) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return "", common.ErrTokenInvalid
	}
	return userID, nil
}

// parseAndValidate parse request body và validate struct tag.
func (h *EnrollmentHandler) parseAndValidate(c fiber.Ctx, input interface{}) error {
	if err := h.ParseRequestBody(c, input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return h.ValidateInput(input)
}

// HandleEnroll ghi danh người dùng hiện tại vào khóa học.
// Route: POST /api/v1/enrollment/enroll
func (h *EnrollmentHandler) HandleEnroll(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.userIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input enrollmentdto.EnrollInput
		if err := h.parseAndValidate(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		enrollment, err := h.EnrollmentService.Enroll(c.Context(), userID, &input)
		if err == nil {
			logger.LogCRUD("create", "enrollment", enrollment.ID.Hex(), c, map[string]interface{}{
				"course_id": input.CourseID,
			})
		}
		h.HandleResponse(c, enrollment, err)
		return nil
	})
}

// HandleMyEnrollments trả về các ghi danh của người dùng hiện tại.
// Route: GET /api/v1/enrollment/my-courses
func (h *EnrollmentHandler) HandleMyEnrollments(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.userIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		enrollments, err := h.EnrollmentService.ListByUser(c.Context(), userID)
		h.HandleResponse(c, enrollments, err)
		return nil
	})
}

// HandleCompleteLesson đánh dấu một bài học đã hoàn thành.
// Route: POST /api/v1/enrollment/progress/complete-lesson
func (h *EnrollmentHandler) HandleCompleteLesson(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.userIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input enrollmentdto.CompleteLessonInput
		if err := h.parseAndValidate(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		progress, err := h.EnrollmentService.CompleteLesson(c.Context(), userID, &input)
		h.HandleResponse(c, progress, err)
		return nil
	})
}

// HandleSubmitQuiz nộp và chấm bài trắc nghiệm của một bài học.
// Route: POST /api/v1/enrollment/progress/submit-quiz
func (h *EnrollmentHandler) HandleSubmitQuiz(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.userIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input enrollmentdto.QuizSubmitInput
		if err := h.parseAndValidate(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.EnrollmentService.SubmitQuiz(c.Context(), userID, &input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleGetProgress trả về tiến độ của người dùng hiện tại trong một khóa học.
// Route: GET /api/v1/enrollment/progress/:courseId
func (h *EnrollmentHandler) HandleGetProgress(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := h.userIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		courseID := c.Params("courseId")
		if courseID == "" {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "courseId không được để trống trong URL params",
				common.StatusBadRequest, nil,
			))
			return nil
		}

		progress, err := h.EnrollmentService.GetProgress(c.Context(), userID, courseID)
		h.HandleResponse(c, progress, err)
		return nil
	})
}
