package user

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 注册校验规则
const (
	MinUsernameLen = 3
	MaxUsernameLen = 50
	MinPasswordLen = 6
	// bcrypt只使用前72字节
	MaxPasswordLen = 72
)

var (
	ErrInvalidUsername = apperrors.Validation("username must be 3-50 characters")
	ErrInvalidPassword = apperrors.Validation("password must be 6-72 characters")
)

// Service 用户领域服务
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, username, password string) (*User, error)

	// Login 用户登录，用户不存在和密码错误返回同一个错误
	Login(ctx context.Context, username, password string) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcrypt.DefaultCost}
}

// Register 用户注册
// 用户名唯一性由数据库UNIQUE索引保证，Repository转换为ErrUsernameDuplicate
func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	// 1. 参数校验
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < MinUsernameLen || n > MaxUsernameLen {
		return nil, ErrInvalidUsername
	}
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return nil, ErrInvalidPassword
	}

	// 2. 密码加密（bcrypt自动加盐）
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	// 3. 持久化
	user := NewUser(username, string(hashed))
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 用户登录
func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	// 1. 查找用户
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	// 2. 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "Internal server error")
	}
	return user, nil
}
