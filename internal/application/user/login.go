package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// SessionRecorder 登录会话记录（Redis实现见persistence/redis.SessionStore）
type SessionRecorder interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}) error
}

// NopSessionRecorder 不记录会话（未启用Redis时使用）
type NopSessionRecorder struct{}

func (NopSessionRecorder) SaveSession(context.Context, uint, map[string]interface{}) error {
	return nil
}

// LoginUseCase 用户登录用例
// 1. 校验用户名密码
// 2. 签发JWT
// 3. 记录会话
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	sessions    SessionRecorder
	logger      *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessions SessionRecorder,
	logger *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"` // 秒
	User      UserInfo `json:"user"`
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 校验用户名密码
	u, err := uc.userService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 签发Token
	token, err := uc.jwtManager.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}

	// 3. 会话记录失败不影响登录
	session := map[string]interface{}{
		"username": u.Username,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessions.SaveSession(ctx, u.ID, session); err != nil {
		uc.logger.Warn("保存登录会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &LoginResponse{
		Token:     token.AccessToken,
		ExpiresIn: token.ExpiresIn,
		User:      UserInfo{ID: u.ID, Username: u.Username},
	}, nil
}
