package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Index 存活检查
// @Summary  存活检查
// @Tags     系统
// @Produce  plain
// @Success  200 {string} string "Book Review API is running."
// @Router   / [get]
func Index(c *gin.Context) {
	c.String(http.StatusOK, "Book Review API is running.")
}
