package service

import (
	"strings"
	"time"

	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"
)

// 审计动作
const (
	AuditRolePolicyGrant  = "role_policy_grant"
	AuditRolePolicyRevoke = "role_policy_revoke"
	AuditRoleDelete       = "role_delete"
	AuditUserRolesUpdate  = "user_roles_update"
	AuditUserFlagsUpdate  = "user_flags_update"
	AuditDiscussionSticky = "discussion_sticky"
	AuditDiscussionClosed = "discussion_closed"
	AuditDiscussionDelete = "discussion_delete"
	AuditPostDelete       = "post_delete"
)

// AuditRecordInput 审计记录输入
type AuditRecordInput struct {
	Operator   *models.User
	TargetUser *models.User
	Action     string
	Role       string
	Object     string
	Method     string
	RequestID  string
	Detail     models.JSON
}

// AuditService 后台操作审计
type AuditService struct {
	repo repository.AuditLogRepository
}

// NewAuditService 创建审计服务
func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record 写入审计日志；缺少操作人或动作时忽略
func (s *AuditService) Record(input AuditRecordInput) error {
	if s == nil || s.repo == nil || input.Operator == nil || input.Operator.ID == 0 {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil
	}
	item := &models.AuditLog{
		OperatorID:       input.Operator.ID,
		OperatorUsername: input.Operator.Username,
		Action:           action,
		Role:             strings.TrimSpace(input.Role),
		Object:           strings.TrimSpace(input.Object),
		Method:           strings.ToUpper(strings.TrimSpace(input.Method)),
		RequestID:        strings.TrimSpace(input.RequestID),
		Detail:           input.Detail,
		CreatedAt:        time.Now(),
	}
	if target := input.TargetUser; target != nil && target.ID != 0 {
		id := target.ID
		item.TargetUserID = &id
		item.TargetUsername = target.Username
	}
	return s.repo.Create(item)
}

// List 管理端查询审计日志
func (s *AuditService) List(filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditLog{}, 0, nil
	}
	filter.Action = strings.TrimSpace(filter.Action)
	filter.Role = strings.TrimSpace(filter.Role)
	return s.repo.List(filter)
}
