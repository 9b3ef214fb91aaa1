package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
)

type userFlagsRequest struct {
	Admin   *bool `json:"admin"`
	Trusted *bool `json:"trusted"`
	Banned  *bool `json:"banned"`
}

// ListUsers 用户列表，支持关键字与标记过滤
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePageQuery(c)
	if !ok {
		return
	}
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	}
	var valid bool
	if filter.Admin, valid = parseBoolQuery(c, "admin"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if filter.Trusted, valid = parseBoolQuery(c, "trusted"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if filter.Banned, valid = parseBoolQuery(c, "banned"); !valid {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	users, total, err := h.UserService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetUser 用户详情（含角色）
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.UserService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	roles, err := h.AuthzService.GetUserRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	policies, err := h.AuthzService.GetUserPolicies(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, gin.H{"user": user, "roles": roles, "policies": policies})
}

// UpdateUserFlags 修改管理员/可信/封禁标记
func (h *Handler) UpdateUserFlags(c *gin.Context) {
	operator, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req userFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	// 防止管理员误操作取消自己的管理员身份
	if operator.ID == id && req.Admin != nil && !*req.Admin {
		respondServiceError(c, service.ErrForbidden)
		return
	}
	user, err := h.UserService.SetFlags(id, service.UserFlagsInput{
		Admin:   req.Admin,
		Trusted: req.Trusted,
		Banned:  req.Banned,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_user_flags_updated",
		"user_id", id,
		"operator_id", operator.ID,
		"admin", user.Admin,
		"trusted", user.Trusted,
		"banned", user.Banned,
	)
	h.recordAudit(c, service.AuditRecordInput{
		Operator:   operator,
		TargetUser: user,
		Action:     service.AuditUserFlagsUpdate,
		Detail:     models.JSON{"admin": user.Admin, "trusted": user.Trusted, "banned": user.Banned},
	})
	response.Success(c, user)
}

func parseBoolQuery(c *gin.Context, key string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &value, true
}
