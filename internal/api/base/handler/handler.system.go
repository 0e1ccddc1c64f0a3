package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"academy/internal/common"
	"academy/internal/global"
)

// SystemHandler xử lý các route liên quan đến system operations
type SystemHandler struct {
	*BaseHandler[interface{}, interface{}, interface{}]
}

// NewSystemHandler tạo một instance mới của SystemHandler
func NewSystemHandler() (*SystemHandler, error) {
	baseHandler := &BaseHandler[interface{}, interface{}, interface{}]{}
	handler := &SystemHandler{
		BaseHandler: baseHandler,
	}
	return handler, nil
}

// HandleHealth kiểm tra tình trạng hệ thống
// @Summary Kiểm tra tình trạng hệ thống
// @Description Kiểm tra trạng thái của API, database connection và Redis cache
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Hệ thống hoạt động bình thường"
// @Failure 503 {object} map[string]interface{} "Hệ thống đang gặp sự cố"
// @Router /system/health [get]
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": fiber.Map{
			"api": "ok",
		},
	}
	degraded := false

	// Kiểm tra MongoDB connection
	if global.MongoDB_Session != nil {
		if err := global.MongoDB_Session.Ping(ctx, nil); err != nil {
			degraded = true
			healthData["services"].(fiber.Map)["database"] = "error"
			healthData["database_error"] = err.Error()
		} else {
			healthData["services"].(fiber.Map)["database"] = "ok"
		}
	} else {
		degraded = true
		healthData["services"].(fiber.Map)["database"] = "not_initialized"
	}

	// Kiểm tra Redis cache (cache tắt không tính là sự cố)
	if global.RedisCache.Enabled() {
		if err := global.RedisCache.Ping(ctx); err != nil {
			degraded = true
			healthData["services"].(fiber.Map)["cache"] = "error"
			healthData["cache_error"] = err.Error()
		} else {
			healthData["services"].(fiber.Map)["cache"] = "ok"
		}
	} else {
		healthData["services"].(fiber.Map)["cache"] = "disabled"
	}

	if degraded {
		healthData["status"] = "degraded"
		// Trả về format chuẩn với status code 503
		return c.Status(common.StatusServiceUnavailable).JSON(fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}

	// Trả về format chuẩn
	return c.Status(common.StatusOK).JSON(fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}
