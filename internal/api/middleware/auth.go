package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/leadcrm_go_server/internal/pkg/jwt"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/response"
)

const (
	UserIDKey    = "userID"
	CompanyIDKey = "companyID"
	RoleKey      = "role"
)

// Auth JWT 认证中间件，把登录人身份放进请求上下文
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(CompanyIDKey, claims.CompanyID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole 角色门禁，挂在 Auth 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.AuthError(c, "请先登录")
			c.Abort()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.PermissionError(c, "")
		c.Abort()
	}
}

// GetUserID 从上下文获取用户身份号
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetCompanyID 从上下文获取公司 ID
func GetCompanyID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(CompanyIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(RoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
