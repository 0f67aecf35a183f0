package jwt

import (
	"strings"

	"CareerRAG/pkg/back"
	"CareerRAG/pkg/util/myjwt"
	"CareerRAG/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// Auth 强制鉴权：没有有效 token 直接拒绝
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := myjwt.ParseToken(tokenString)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("uuid", claims.Uuid)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// Identity 可选鉴权：有 token 则解析出上传者身份，否则记为 anonymous。
// 知识库接口对匿名调用开放，uploadedBy 只用于归属标记。
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uploadedBy := "anonymous"
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if claims, err := myjwt.ParseToken(tokenString); err == nil {
				uploadedBy = claims.Uuid
				c.Set("username", claims.Username)
			}
		}
		c.Set("uuid", uploadedBy)
		c.Next()
	}
}
