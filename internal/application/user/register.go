package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/user"
)

// RegisterUseCase 用户注册用例
type RegisterUseCase struct {
	userService user.Service
	logger      *zap.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, logger *zap.Logger) *RegisterUseCase {
	return &RegisterUseCase{userService: userService, logger: logger}
}

// Execute 执行注册
// 返回应用层DTO，不包含密码哈希
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	// 1. 调用领域服务
	u, err := uc.userService.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("用户已注册", zap.Uint("user_id", u.ID), zap.String("username", u.Username))

	// 2. 领域实体 → DTO
	return &UserInfo{ID: u.ID, Username: u.Username}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Password string
}

// UserInfo 用户信息
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
