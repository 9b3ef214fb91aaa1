package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/fith/sugar/internal/authz"
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/repository"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 后台审计日志，按操作人、目标用户、动作、角色与时间过滤
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePageQuery(c)
	if !ok {
		return
	}
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	filter := repository.AuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Action:   c.Query("action"),
		Role:     c.Query("role"),
	}
	var valid bool
	if filter.OperatorID, valid = parseUintQuery(c, "operator_id"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if filter.TargetUserID, valid = parseUintQuery(c, "target_user_id"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if filter.CreatedFrom, valid = parseTimeQuery(c, "created_from"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if filter.CreatedTo, valid = parseTimeQuery(c, "created_to"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	logs, total, err := h.AuditService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, logs, response.NewPagination(page, pageSize, total))
}

// recordAudit 审计写入失败只记日志，不影响已完成的操作
func (h *Handler) recordAudit(c *gin.Context, input service.AuditRecordInput) {
	if h == nil || h.AuditService == nil {
		return
	}
	if input.Operator == nil {
		input.Operator = handlershared.CurrentUser(c)
	}
	if input.RequestID == "" {
		input.RequestID = handlershared.CurrentRequestID(c)
	}
	if err := h.AuditService.Record(input); err != nil {
		handlershared.RequestLog(c).Warnw("admin_audit_record_failed", "action", input.Action, "error", err)
	}
}

// requestTarget 版务操作以路由模板与方法作为审计对象
func requestTarget(c *gin.Context) (string, string) {
	object := c.FullPath()
	if object == "" && c.Request != nil {
		object = c.Request.URL.Path
	}
	method := ""
	if c.Request != nil {
		method = c.Request.Method
	}
	return authz.NormalizeObject(object), method
}

func parseUintQuery(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &value, true
}
