package xerr

import "fmt"

// CodeError 自定义错误结构，Code 即对外返回的 HTTP 状态码
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// Upstream 上游模型重试耗尽后的错误，附带最后一次失败原因
func Upstream(last error) *CodeError {
	if last == nil {
		return New(BadGateway, "Upstream model error")
	}
	return New(BadGateway, fmt.Sprintf("Upstream model error: %v", last))
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	NotFound            = 404
	MethodNotAllowed    = 405
	Unprocessable       = 422
	InternalServerError = 500
	BadGateway          = 502
)

// 常用预定义错误
var (
	ErrServerError  = New(InternalServerError, "Internal server error")
	ErrParam        = New(Unprocessable, "Invalid request body")
	ErrBodyTooLarge = New(Unprocessable, "Request body too large")
	ErrNotFound     = New(NotFound, "Not found")
	ErrMethod       = New(MethodNotAllowed, "Method not allowed")
	ErrEmptyOutput  = New(BadGateway, "Empty response from model")
)
