package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// MessageBody 失败响应与纯提示响应的结构
// 约定：失败时始终返回 {"message": "..."}，不带业务码
type MessageBody struct {
	Message string `json:"message" example:"Book not found"`
}

// OK 200响应，data原样序列化
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message 200 + {"message": msg}
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageBody{Message: msg})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := uc.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	// 内部错误记录到日志
	if appErr.Err != nil {
		fields := []zap.Field{
			zap.Int("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		}
		if rid, ok := c.Get("request_id"); ok {
			fields = append(fields, zap.Any("request_id", rid))
		}
		if status >= http.StatusInternalServerError {
			zap.L().Error("request failed", fields...)
		} else {
			zap.L().Warn("request failed", fields...)
		}
	}

	c.AbortWithStatusJSON(status, MessageBody{Message: appErr.Message})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// =========================================
// 分页响应结构
// =========================================

// PageMeta 分页元数据
type PageMeta struct {
	Total int64 `json:"total" example:"42"` // 过滤后的总记录数（与分页窗口无关）
	Page  int   `json:"page" example:"1"`
	Limit int   `json:"limit" example:"10"`
}

// PageData 分页数据封装
type PageData struct {
	Data interface{} `json:"data"`
	Meta PageMeta    `json:"meta"`
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, limit int) *PageData {
	return &PageData{
		Data: list,
		Meta: PageMeta{Total: total, Page: page, Limit: limit},
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, limit int) {
	OK(c, NewPageData(list, total, page, limit))
}
