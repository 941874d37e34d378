package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// pathID 解析路径中的数字ID
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.Validation("Invalid " + name)
	}
	return uint(id), nil
}

// queryInt 解析可选的整数查询参数，缺省返回0，非数字返回400错误
func queryInt(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("Invalid " + name)
	}
	return v, nil
}

// bindJSON 绑定JSON请求体，失败返回400
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.New(apperrors.ErrCodeBindError, "Invalid request body: "+err.Error())
	}
	return nil
}
