package repository

import "time"

// DiscussionListFilter 查询讨论列表的过滤条件
type DiscussionListFilter struct {
	Page          int
	Limit         int
	CategoryID    uint
	UserID        uint
	OnlyUntrusted bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Admin    *bool
	Trusted  *bool
	Banned   *bool
}

// AuditLogListFilter 审计日志查询条件
type AuditLogListFilter struct {
	Page         int
	PageSize     int
	OperatorID   uint
	TargetUserID uint
	Action       string
	Role         string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}
