package response

import "github.com/gin-gonic/gin"

// AppError 接口层错误：业务码、已本地化的消息、可选字段错误与原始错误
type AppError struct {
	Code    int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithFields 附带字段级校验错误
func (e *AppError) WithFields(fields map[string]string) *AppError {
	e.Fields = fields
	return e
}

// Write 按统一信封输出，有字段错误时放入 data.fields
func (e *AppError) Write(c *gin.Context) {
	if len(e.Fields) > 0 {
		ErrorWithData(c, e.Code, e.Message, gin.H{"fields": e.Fields})
		return
	}
	Error(c, e.Code, e.Message)
}
