package middleware

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"academy/internal/common"
	"academy/internal/global"
)

// AuthMiddleware middleware xác thực JWT cho Fiber.
// Token được ký HMAC với JwtSecret từ cấu hình. Claims hợp lệ sẽ được
// lưu vào context: user_id (string), user_role (string, nếu có).
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Lấy token từ header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// Chỉ log khi thiếu token (lỗi quan trọng)
			logrus.WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		// Kiểm tra định dạng token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		tokenStr := parts[1]

		// Parse và verify chữ ký HMAC
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("phương thức ký không được hỗ trợ: %v", t.Header["alg"])
			}
			return []byte(global.MongoDB_ServerConfig.JwtSecret), nil
		})
		if err != nil {
			// Phân biệt token hết hạn và token sai
			if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
				logrus.WithFields(logrus.Fields{
					"path": c.Path(),
				}).Warn("❌ [AUTH] Token expired")
				HandleErrorResponse(c, common.ErrTokenExpired)
				return nil
			}
			logrus.WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Invalid token")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Claim sub (user id) là bắt buộc
		userID, _ := claims["sub"].(string)
		if userID == "" {
			logrus.WithFields(logrus.Fields{
				"path": c.Path(),
			}).Warn("❌ [AUTH] Token missing sub claim")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", userID)
		if role, ok := claims["role"].(string); ok {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}
