package middleware

import (
	"strings"
	"time"

	"remark-go/internal/api/response"
	"remark-go/internal/model"
	"remark-go/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUser = "currentUser"
)

// AuthRequired 认证中间件：校验凭证并把用户状态加载进上下文
// 每个请求都重新从库里读取用户，封禁/禁言/角色变更即刻生效
func AuthRequired(identityService *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "缺少认证令牌")
			c.Abort()
			return
		}

		user, err := identityService.Authenticate(token)
		if err != nil {
			response.Unauthorized(c, "无效或过期的认证令牌")
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// GetCurrentUser 从 Gin Context 中获取当前登录用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}

// RoleRequired 角色门槛中间件（必须在 AuthRequired 之后使用）
// 以影子封禁折算后的有效角色判定
func RoleRequired(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		if model.RoleRank[user.EffectiveRole(time.Now())] < model.RoleRank[minRole] {
			response.Forbidden(c, "权限不足")
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken 从 Authorization 头中提取 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
