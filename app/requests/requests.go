// Package requests 处理请求数据和表单验证
package requests

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/thedevsaddam/govalidator"
)

// ErrMalformed 请求无法解析
var ErrMalformed = errors.New("malformed request")

// ValidationError 表单验证错误
type ValidationError struct {
	Errors url.Values
}

// Error 实现 error 接口
func (v ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", v.Errors)
}

// ValidateStruct 通用的结构体验证函数，data 必须是指针
func ValidateStruct(data interface{}, rules govalidator.MapData, messages govalidator.MapData) error {
	opts := govalidator.Options{
		Data:     data,
		Rules:    rules,
		Messages: messages,
	}

	if errs := govalidator.New(opts).ValidateStruct(); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}
