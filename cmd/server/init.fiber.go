package main

import (
	"fmt"
	"strings"
	"time"

	basehdl "academy/internal/api/base/handler"
	basesvc "academy/internal/api/base/service"
	cataloghdl "academy/internal/api/catalog/handler"
	catalogmodels "academy/internal/api/catalog/models"
	catalogrouter "academy/internal/api/catalog/router"
	catalogsvc "academy/internal/api/catalog/service"
	enrollmenthdl "academy/internal/api/enrollment/handler"
	enrollmentmodels "academy/internal/api/enrollment/models"
	enrollmentrouter "academy/internal/api/enrollment/router"
	enrollmentsvc "academy/internal/api/enrollment/service"
	apirouter "academy/internal/api/router"
	"academy/internal/assetstore"
	"academy/internal/common"
	"academy/internal/global"
	"academy/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// mustCollection lấy collection từ registry, fatal nếu chưa được đăng ký.
// Gọi sau InitRegistry nên thiếu collection là lỗi lập trình, không phải runtime.
func mustCollection(name string) *mongo.Collection {
	col, exists := global.RegistryCollections.Get(name)
	if !exists {
		logrus.Fatalf("Collection %s chưa được đăng ký trong registry", name)
	}
	return col
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
// và wire toàn bộ services/handlers qua constructor injection.
func InitFiberApp() *fiber.App {
	// Khởi tạo app với cấu hình nâng cao
	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CẤU HÌNH CƠ BẢN
		// =========================================
		AppName:       "Academy API", // Tên ứng dụng hiển thị
		ServerHeader:  "Academy API", // Header server trong response
		StrictRouting: true,          // /foo và /foo/ là khác nhau
		CaseSensitive: true,          // /Foo và /foo là khác nhau
		UnescapePath:  true,          // Tự động decode URL-encoded paths
		Immutable:     false,         // Tính năng immutable cho ctx

		// =========================================
		// 2. CẤU HÌNH PERFORMANCE
		// =========================================
		// Body limit lớn vì thumbnail và video bài học đi vào dưới dạng base64
		BodyLimit:       (global.MongoDB_ServerConfig.AssetStore_MaxUploadMB + 10) * 1024 * 1024,
		Concurrency:     256 * 1024, // Số lượng goroutines tối đa
		ReadBufferSize:  4096,       // Buffer size cho request reading
		WriteBufferSize: 4096,       // Buffer size cho response writing

		// =========================================
		// 3. CẤU HÌNH TIMEOUT
		// =========================================
		// Write timeout dài hơn bình thường: create/update course phải chờ upload media
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,

		// =========================================
		// 4. CẤU HÌNH ERROR HANDLING
		// =========================================
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			errorCode := common.ErrCodeInternalServer.Code

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
				// Map HTTP status code to error code
				switch code {
				case fiber.StatusBadRequest:
					errorCode = common.ErrCodeValidationInput.Code
				case fiber.StatusUnauthorized:
					errorCode = common.ErrCodeAuthToken.Code
				case fiber.StatusNotFound:
					errorCode = common.ErrCodeDatabaseQuery.Code
				case fiber.StatusConflict:
					errorCode = common.ErrCodeBusinessState.Code
				case fiber.StatusRequestEntityTooLarge:
					errorCode = common.ErrCodeValidationInput.Code
				}
			}

			// Kiểm tra xem có phải lỗi TLS handshake không (HTTPS đến HTTP server)
			// TLS handshake bắt đầu với byte 0x16 0x03 0x01
			errMsg := err.Error()
			isTLSHandshake := strings.Contains(errMsg, "unsupported http request method") &&
				(strings.Contains(errMsg, "\\x16\\x03\\x01") ||
					strings.Contains(errMsg, "\x16\x03\x01") ||
					strings.Contains(errMsg, "error when reading request headers"))

			// Nếu là TLS handshake, không log (hành vi bình thường) và trả về hướng dẫn
			if isTLSHandshake {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"code":    common.ErrCodeValidationInput.Code,
					"message": "Server chỉ hỗ trợ HTTP. Vui lòng sử dụng http:// thay vì https://",
					"status":  "error",
					"details": fiber.Map{
						"protocol":   "HTTP only",
						"suggestion": "Sử dụng URL: http://localhost:" + global.MongoDB_ServerConfig.Address,
					},
				})
			}

			// Log error cho các lỗi khác
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"code":      code,
				"errorCode": errorCode,
				"message":   message,
			}).Error("Request error")

			// Return JSON error với format thống nhất
			return c.Status(code).JSON(fiber.Map{
				"code":    errorCode,
				"message": message,
				"status":  "error",
			})
		},
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID Middleware - Tạo ID duy nhất cho mỗi request để trace
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// 2. CORS Middleware - PHẢI ĐẶT Ở ĐẦU để xử lý preflight requests trước các middleware khác
	corsOrigins := global.MongoDB_ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		// Development mode: cho phép tất cả
		allowOrigins = []string{"*"}
	} else {
		// Production mode: chỉ cho phép các origins cụ thể
		allowOrigins = strings.Split(corsOrigins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
		},
		AllowCredentials: global.MongoDB_ServerConfig.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
		MaxAge:           24 * 60 * 60, // Thời gian cache preflight requests (24 giờ)
	}))

	// 3. Security Headers Middleware - Thêm các security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 4. Rate Limiting Middleware - Giới hạn số request
	// Chỉ bật rate limit nếu được enable và Max > 0
	if global.MongoDB_ServerConfig.RateLimit_Enabled && global.MongoDB_ServerConfig.RateLimit_Max > 0 {
		rateLimitMax := global.MongoDB_ServerConfig.RateLimit_Max
		rateLimitWindow := time.Duration(global.MongoDB_ServerConfig.RateLimit_Window) * time.Second
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimitMax,
			Expiration: rateLimitWindow,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP() // Giới hạn theo IP
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    common.ErrCodeBusinessOperation.Code,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			SkipFailedRequests:     false,
			SkipSuccessfulRequests: false,
			Next: func(c fiber.Ctx) bool {
				// Bỏ qua rate limit cho health check và OPTIONS requests (preflight)
				return c.Path() == "/health" ||
					c.Path() == "/api/v1/system/health" ||
					c.Method() == "OPTIONS"
			},
		}))
		log := logger.GetAppLogger()
		log.Infof("Rate limiting enabled: %d requests per %d seconds", rateLimitMax, global.MongoDB_ServerConfig.RateLimit_Window)
	} else {
		log := logger.GetAppLogger()
		log.Info("Rate limiting disabled")
	}

	// 5. Recover Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic với stack trace
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic":   e,
				"headers": c.GetReqHeaders(),
			}).Error("Panic recovered")

			// Trả về response với format chuẩn
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusInternalServerError,
				"message": "Internal Server Error",
				"error":   fmt.Sprintf("%v", e),
				"time":    time.Now().Format(time.RFC3339),
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Bỏ qua health check
			return c.Path() == "/health" ||
				c.Path() == "/api/v1/system/health"
		},
	}))

	// =========================================
	// WIRING: SERVICES VÀ HANDLERS
	// =========================================
	cfg := global.MongoDB_ServerConfig

	// Base services trên từng collection (generic, tái sử dụng cho mọi domain)
	courses := basesvc.NewBaseServiceMongo[catalogmodels.Course](mustCollection(global.MongoDB_ColNames.Courses))
	categories := basesvc.NewBaseServiceMongo[catalogmodels.Category](mustCollection(global.MongoDB_ColNames.Categories))
	orphans := basesvc.NewBaseServiceMongo[catalogmodels.OrphanAsset](mustCollection(global.MongoDB_ColNames.OrphanAssets))
	enrollments := basesvc.NewBaseServiceMongo[enrollmentmodels.Enrollment](mustCollection(global.MongoDB_ColNames.Enrollments))
	progress := basesvc.NewBaseServiceMongo[enrollmentmodels.Progress](mustCollection(global.MongoDB_ColNames.Progress))

	// Kho media bên ngoài (Cloudinary-style)
	assetClient := assetstore.NewCloudinaryClient(cfg)

	// Domain services
	courseService := catalogsvc.NewCourseService(
		courses, categories, orphans, assetClient, global.RedisCache,
		int64(cfg.AssetStore_MaxUploadMB)*1024*1024,
	)
	categoryService := catalogsvc.NewCategoryService(categories, courses)
	enrollmentService := enrollmentsvc.NewEnrollmentService(enrollments, progress, courses)

	// Handlers
	courseHandler := cataloghdl.NewCourseHandler(courseService, courses)
	categoryHandler := cataloghdl.NewCategoryHandler(categoryService, categories)
	orphanHandler := cataloghdl.NewOrphanAssetHandler(orphans)
	enrollmentHandler := enrollmenthdl.NewEnrollmentHandler(enrollmentService, enrollments)

	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		logrus.Fatalf("Không khởi tạo được system handler: %v", err)
	}

	// Đăng ký routes theo domain
	err = apirouter.SetupRoutes(app,
		func(v1 fiber.Router, r *apirouter.Router) error {
			apirouter.RegisterRouteWithMiddleware(v1, "/system", "GET", "/health", nil, systemHandler.HandleHealth)
			return nil
		},
		catalogrouter.Register(courseHandler, categoryHandler, orphanHandler),
		enrollmentrouter.Register(enrollmentHandler),
	)
	if err != nil {
		logrus.Fatalf("Không đăng ký được routes: %v", err)
	}

	// Health check đơn giản ở root cho load balancer
	app.Get("/health", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}
