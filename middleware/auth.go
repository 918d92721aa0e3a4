package middleware

import (
	"net/http"
	"strings"
	"time"

	"Discodeit/pkg/context"
	"Discodeit/pkg/jwt"
	"Discodeit/pkg/log"
	"Discodeit/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	renewBefore = 5 * time.Minute
	renewExpire = 2 * time.Hour
)

func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "缺少 Authorization")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Abort(c, http.StatusUnauthorized, "Authorization 格式错误")
			return
		}

		claims, err := jwt.ParseToken(secret, jwt.TokenTypeAccess, parts[1])
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		if jwt.ShouldRotate(claims, renewBefore) {
			newToken, err := jwt.GenerateToken(secret, claims.UserID, jwt.TokenTypeAccess, renewExpire)
			if err != nil {
				log.L.Warn("renew access token", zap.String("user_id", claims.UserID), zap.Error(err))
			} else {
				c.Header("X-New-Access-Token", newToken)
			}
		}
		c.Set(context.CtxUserID, claims.UserID)

		c.Next()
	}
}
