package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"order-notifier/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// WebhookClaims - клеймы JWT, которым база данных подписывает вызов вебхука.
type WebhookClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// WebhookAuth проверяет Authorization: Bearer <HS256 JWT>, подписанный secret.
// Если задан requiredRole, claim role должен с ним совпадать.
func WebhookAuth(secret, requiredRole string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("webhook_auth")
	key := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Missing token"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Malformed Authorization header", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Malformed token header"})
			return
		}

		claims := &WebhookClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			msg := "Unauthorized: Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Unauthorized: Token expired"
			}
			log.Warn("Webhook token verification failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: msg})
			return
		}

		if requiredRole != "" && claims.Role != requiredRole {
			log.Warn("Webhook token has wrong role", zap.String("role", claims.Role), zap.String("required", requiredRole))
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Forbidden"})
			return
		}

		c.Next()
	}
}
