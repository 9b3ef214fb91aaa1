package admin

import (
	"github.com/fith/sugar/internal/authz"
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
)

type userRolesRequest struct {
	Roles []string `json:"roles"`
}

type rolePolicyRequest struct {
	Object string `json:"object"`
	Action string `json:"action"`
}

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, roles)
}

// GetRolePolicies 查看角色的路由策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role, ok := normalizeRoleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, policies)
}

// GrantRolePolicy 为角色授予路由权限
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	role, ok := normalizeRoleParam(c)
	if !ok {
		return
	}
	var req rolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" || req.Action == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(role, req.Object, req.Action); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_role_policy_granted", "role", role, "object", req.Object, "action", req.Action)
	h.recordAudit(c, service.AuditRecordInput{
		Action: service.AuditRolePolicyGrant,
		Role:   role,
		Object: authz.NormalizeObject(req.Object),
		Method: authz.NormalizeAction(req.Action),
	})
	h.respondRolePolicies(c, role)
}

// RevokeRolePolicy 撤销角色的路由权限
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	role, ok := normalizeRoleParam(c)
	if !ok {
		return
	}
	var req rolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" || req.Action == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(role, req.Object, req.Action); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_role_policy_revoked", "role", role, "object", req.Object, "action", req.Action)
	h.recordAudit(c, service.AuditRecordInput{
		Action: service.AuditRolePolicyRevoke,
		Role:   role,
		Object: authz.NormalizeObject(req.Object),
		Method: authz.NormalizeAction(req.Action),
	})
	h.respondRolePolicies(c, role)
}

// DeleteRole 删除角色及其授权关系
func (h *Handler) DeleteRole(c *gin.Context) {
	role, ok := normalizeRoleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_role_deleted", "role", role)
	h.recordAudit(c, service.AuditRecordInput{Action: service.AuditRoleDelete, Role: role})
	response.Success(c, gin.H{"role": role})
}

// GetUserRoles 查看用户角色
func (h *Handler) GetUserRoles(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.UserService.Get(id); err != nil {
		respondServiceError(c, err)
		return
	}
	roles, err := h.AuthzService.GetUserRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, roles)
}

// SetUserRoles 覆盖设置用户角色
func (h *Handler) SetUserRoles(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req userRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	target, err := h.UserService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	previous, err := h.AuthzService.GetUserRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if err := h.AuthzService.SetUserRoles(id, req.Roles); err != nil {
		respondServiceError(c, err)
		return
	}
	roles, err := h.AuthzService.GetUserRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_user_roles_updated", "user_id", id, "roles", roles)
	h.recordAudit(c, service.AuditRecordInput{
		TargetUser: target,
		Action:     service.AuditUserRolesUpdate,
		Detail:     models.JSON{"previous": previous, "roles": roles},
	})
	response.Success(c, roles)
}

// ListRoleUsers 查看拥有该角色的用户
func (h *Handler) ListRoleUsers(c *gin.Context) {
	role, ok := normalizeRoleParam(c)
	if !ok {
		return
	}
	ids, err := h.AuthzService.UsersWithRole(role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	users, err := h.UserRepo.ListByIDs(ids)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.Success(c, users)
}

func (h *Handler) respondRolePolicies(c *gin.Context, role string) {
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, policies)
}

func normalizeRoleParam(c *gin.Context) (string, bool) {
	role, err := authz.NormalizeRole(c.Param("role"))
	if err != nil {
		respondServiceError(c, err)
		return "", false
	}
	return role, true
}
