package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/jwt"
	"github.com/xiebiao/bookreview/pkg/response"
)

// Context中保存的身份信息key
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// Identity 当前登录用户
type Identity struct {
	UserID   uint
	Username string
}

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Token
// 2. 验证签名和有效期
// 3. 将用户信息注入Context
// 无状态：不查询黑名单或会话
type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequireAuth 要求登录
//
//	authorized := r.Group("/")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.POST("/books", handler.CreateBook)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 提取Token，格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		// 2. 验证Token（签名错误、算法不符、格式错误、过期统一返回401）
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			return
		}

		// 3. 注入用户信息
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)

		c.Next()
	}
}

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetIdentity 从Context获取当前登录用户
func GetIdentity(c *gin.Context) (Identity, bool) {
	userID := GetUserID(c)
	if userID == 0 {
		return Identity{}, false
	}
	return Identity{UserID: userID, Username: c.GetString(ctxUsername)}, true
}
