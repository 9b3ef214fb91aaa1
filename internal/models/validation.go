package models

import (
	"regexp"
	"strings"
)

// nonWordRun 匹配连续的非单词字符
var nonWordRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors 按字段顺序记录的校验错误
type ValidationErrors []FieldError

// Add 追加字段错误
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Has 判断字段是否有错误
func (e ValidationErrors) Has(field string) bool {
	for _, item := range e {
		if item.Field == field {
			return true
		}
	}
	return false
}

// Fields 返回 字段 -> 错误 映射，便于接口输出
func (e ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, item := range e {
		if _, ok := fields[item.Field]; !ok {
			fields[item.Field] = item.Message
		}
	}
	return fields
}

// OrNil 无错误时返回 nil，避免 typed-nil 接口
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, item := range e {
		parts = append(parts, item.Field+" "+item.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
