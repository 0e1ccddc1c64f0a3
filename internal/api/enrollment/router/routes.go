// Package router đăng ký các route thuộc domain Enrollment.
package router

import (
	"github.com/gofiber/fiber/v3"

	enrollmenthdl "academy/internal/api/enrollment/handler"
	"academy/internal/api/middleware"
	apirouter "academy/internal/api/router"
)

// Register trả về hàm đăng ký route enrollment lên v1 với handler được inject.
// Tất cả route đều yêu cầu JWT.
func Register(enrollmentHandler *enrollmenthdl.EnrollmentHandler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		authMiddleware := middleware.AuthMiddleware()

		apirouter.RegisterRouteWithMiddleware(v1, "/enrollment", "POST", "/enroll", []fiber.Handler{authMiddleware}, enrollmentHandler.HandleEnroll)
		apirouter.RegisterRouteWithMiddleware(v1, "/enrollment", "GET", "/my-courses", []fiber.Handler{authMiddleware}, enrollmentHandler.HandleMyEnrollments)
		apirouter.RegisterRouteWithMiddleware(v1, "/enrollment", "POST", "/progress/complete-lesson", []fiber.Handler{authMiddleware}, enrollmentHandler.HandleCompleteLesson)
		apirouter.RegisterRouteWithMiddleware(v1, "/enrollment", "POST", "/progress/submit-quiz", []fiber.Handler{authMiddleware}, enrollmentHandler.HandleSubmitQuiz)
		apirouter.RegisterRouteWithMiddleware(v1, "/enrollment", "GET", "/progress/:courseId", []fiber.Handler{authMiddleware}, enrollmentHandler.HandleGetProgress)

		return nil
	}
}
