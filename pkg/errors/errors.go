package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，按区间映射到HTTP状态码（见HTTPStatus）
// 2. Message是返回给客户端的提示信息
// 3. Err是内部错误，只记录日志，不序列化
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 业务错误码 → HTTP状态码
func (e *AppError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如签名失败、哈希失败），对外表现为500
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Store 包装数据库错误
// 对外返回400，消息直接使用底层存储的错误信息
func Store(err error) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: err.Error(),
		Err:     err,
	}
}

// Validation 参数校验失败
func Validation(message string) *AppError {
	return New(ErrCodeInvalidParams, message)
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx/409xx: 参数错误、业务规则校验失败 → 400
// - 401xx: 认证失败 → 401
// - 404xx: 资源不存在 → 404
// - 429xx: 限流 → 429
// - 50001: 数据库错误 → 400（沿用存储层消息）
// - 其余5xxxx: 服务端错误 → 500

const (
	// 系统级错误码
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证错误
	ErrCodeUnauthorized    = 40100 // 未提供Token
	ErrCodeInvalidToken    = 40101 // Token无效或已过期
	ErrCodeInvalidPassword = 40103 // 用户名或密码错误

	// 资源错误
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound   = 40401 // 用户不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeReviewNotFound = 40404 // 评论不存在或不属于当前用户

	// 业务规则错误
	ErrCodeBusinessError     = 40000 // 业务错误(通用)
	ErrCodeUsernameDuplicate = 40003 // 用户名已存在
	ErrCodeDuplicateReview   = 40006 // 重复评论
	ErrCodeInvalidReference  = 40007 // 外键引用不存在
	ErrCodeDuplicateEntry    = 40009 // 重复记录(通用)

	// 参数错误
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败

	// 限流
	ErrCodeTooManyRequests = 42900
)

// HTTPStatus 按错误码区间映射HTTP状态码
func HTTPStatus(code int) int {
	switch {
	case code == ErrCodeDatabaseError:
		return http.StatusBadRequest
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 42900 && code < 43000:
		return http.StatusTooManyRequests
	case code >= 40000 && code < 41000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal = New(ErrCodeInternal, "Internal server error")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "No token provided")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "Invalid or expired token")
	ErrTokenExpired    = New(ErrCodeInvalidToken, "Invalid or expired token")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "Invalid username or password")

	ErrUserNotFound      = New(ErrCodeUserNotFound, "User not found")
	ErrUsernameDuplicate = New(ErrCodeUsernameDuplicate, "Username already taken")

	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal server error")
}

// HasCode 判断err链上是否存在指定错误码的AppError
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
