package shared

import (
	"errors"

	"github.com/fith/sugar/internal/authz"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/i18n"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// ForumErrorRules 论坛业务错误映射
var ForumErrorRules = []MappedError{
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrUserBanned, Code: response.CodeForbidden, Key: "error.user_banned"},
	{Target: service.ErrDiscussionClosed, Code: response.CodeForbidden, Key: "error.discussion_closed"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrDiscussionNotFound, Code: response.CodeNotFound, Key: "error.discussion_not_found"},
	{Target: service.ErrPostNotFound, Code: response.CodeNotFound, Key: "error.post_not_found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrCategoryInUse, Code: response.CodeConflict, Key: "error.category_in_use"},
	{Target: service.ErrFirstPostDelete, Code: response.CodeConflict, Key: "error.first_post_delete_rejected"},
	{Target: authz.ErrRoleRequired, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrReservedRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrActionRequired, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: authz.ErrBuiltinRole, Code: response.CodeConflict, Key: "error.role_builtin"},
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	appErr.Write(c)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	appErr.Write(c)
}

// RespondServiceError 按映射规则返回业务错误，字段校验错误附带 fields
func RespondServiceError(c *gin.Context, err error) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		msg := i18n.T(i18n.ResolveLocale(c), "error.validation_failed")
		response.ValidationFailed(c, msg, verrs.Fields())
		return
	}
	for _, rule := range ForumErrorRules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, "error.internal_error", err)
}
