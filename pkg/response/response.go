// Package response 提供统一的 HTTP 响应处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 预定义响应状态
const (
	Success = "success" // 成功状态
	Error   = "error"   // 错误状态
)

/* 标准响应结构
{
    "status": "success",
    "data": {},     // 成功时返回的数据
    "error": "",    // 错误时为 HTTP 状态短语，例如 Not Found
    "message": "",  // 提示信息
}
*/

// Response 统一响应结构体
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ------------------ 成功响应系列 ------------------

// Data 响应 200 和数据
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: Success,
		Data:   data,
	})
}

// JSON 直接返回 JSON 数据
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 响应 201 和数据
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status: Success,
		Data:   data,
	})
}

// ------------------ 错误响应系列 ------------------

// Abort 以指定状态码中断请求，error 字段为状态短语
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Response{
		Status:  Error,
		Error:   http.StatusText(code),
		Message: msg,
	})
}

// Abort400 响应 400 错误
func Abort400(c *gin.Context, msg ...string) {
	Abort(c, http.StatusBadRequest, getMsg("Invalid request parameters.", msg...))
}

// Abort401 响应 401 错误
func Abort401(c *gin.Context, msg ...string) {
	Abort(c, http.StatusUnauthorized, getMsg("Authentication required.", msg...))
}

// Abort403 响应 403 错误
func Abort403(c *gin.Context, msg ...string) {
	Abort(c, http.StatusForbidden, getMsg("You do not have permission to access this resource.", msg...))
}

// Abort404 响应 404 错误
func Abort404(c *gin.Context, msg ...string) {
	Abort(c, http.StatusNotFound, getMsg("Resource not found.", msg...))
}

// Abort422 响应 422 错误
func Abort422(c *gin.Context, msg ...string) {
	Abort(c, http.StatusUnprocessableEntity, getMsg("The request could not be processed.", msg...))
}

// Abort429 响应 429 错误
func Abort429(c *gin.Context, msg ...string) {
	Abort(c, http.StatusTooManyRequests, getMsg("Too many requests, please try again later.", msg...))
}

// Abort500 响应 500 错误，不向外暴露内部错误
func Abort500(c *gin.Context, msg ...string) {
	Abort(c, http.StatusInternalServerError, getMsg("An unexpected error occurred. Please contact support.", msg...))
}

// Abort503 响应 503 错误
func Abort503(c *gin.Context, msg ...string) {
	Abort(c, http.StatusServiceUnavailable, getMsg("Service temporarily unavailable.", msg...))
}

// ValidationError 响应 400 表单验证错误
func ValidationError(c *gin.Context, errors map[string][]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Error,
		Error:   http.StatusText(http.StatusBadRequest),
		Message: "Request validation failed.",
		Data:    errors,
	})
}

// getMsg 获取消息内容
func getMsg(defaultMsg string, msg ...string) string {
	if len(msg) > 0 && msg[0] != "" {
		return msg[0]
	}
	return defaultMsg
}
