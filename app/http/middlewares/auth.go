package middlewares

import (
	"strings"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/auth"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userId"
	ContextUserRole = "userRole"
)

// AdminOnly 只允许 role=admin 的 Bearer Token 访问
func AdminOnly(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort401(c, "Authorization header missing.")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Abort401(c, "Invalid Authorization header.")
			return
		}

		claims, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			logger.DebugString("Auth", "AdminOnly", err.Error())
			response.Abort401(c, "Invalid or expired token.")
			return
		}

		if claims.Role != auth.RoleAdmin {
			response.Abort403(c)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}
