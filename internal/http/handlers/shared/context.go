package shared

import (
	"strconv"
	"strings"

	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/models"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyRequestID   = "request_id"
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
)

// CurrentUser 当前请求的用户，游客返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if c == nil {
		return nil
	}
	value, exists := c.Get(ContextKeyCurrentUser)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// RequireUser 读取当前用户，缺失时返回 401
func RequireUser(c *gin.Context) (*models.User, bool) {
	user := CurrentUser(c)
	if user == nil {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	return user, true
}

// ParseIDParam 解析路径中的数字 ID
// 兼容 12-hello_world、4;General 这类带标识后缀的写法
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	id, err := strconv.ParseUint(raw[:end], 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}

// CurrentRequestID 当前请求 ID
func CurrentRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get(ContextKeyRequestID); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
