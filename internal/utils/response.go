package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 统一响应封装：所有接口返回 {success, data|message|error}
// 部分成功时在 data 旁附带 errors 数组

// OK 返回成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// OKWithErrors 返回部分成功响应，errors 记录逐项失败
func OKWithErrors(c *gin.Context, data interface{}, errs interface{}) {
	resp := gin.H{
		"success": true,
		"data":    data,
	}
	if errs != nil {
		resp["errors"] = errs
	}
	c.JSON(http.StatusOK, resp)
}

// OKMessage 返回只带提示信息的成功响应
func OKMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
	})
}

// Accepted 返回已受理响应，用于异步任务
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data":    data,
	})
}

// BadRequest 返回参数错误响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

// NotFound 返回资源不存在响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   msg,
	})
}

// ServerError 返回服务器内部错误响应
// 详细错误只记录在服务端日志，不对外返回
func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   msg,
	})
}
