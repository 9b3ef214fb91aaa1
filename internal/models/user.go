package models

import (
	"time"
)

// User 论坛用户表
type User struct {
	ID               uint       `gorm:"primarykey" json:"id"`                        // 主键
	Username         string     `gorm:"uniqueIndex;not null" json:"username"`        // 用户名
	DisplayName      string     `gorm:"not null;default:''" json:"display_name"`     // 昵称
	Admin            bool       `gorm:"not null;index" json:"admin"`                 // 管理员
	Trusted          bool       `gorm:"not null" json:"trusted"`                     // 可信用户
	Banned           bool       `gorm:"not null" json:"banned"`                      // 已封禁
	DiscussionsCount int        `gorm:"not null;default:0" json:"discussions_count"` // 发起讨论数
	PostsCount       int        `gorm:"not null;default:0" json:"posts_count"`       // 发帖数
	TokenVersion     uint64     `gorm:"not null;default:0" json:"-"`                 // Token 版本（用于全量失效）
	LastActiveAt     *time.Time `json:"last_active_at"`                              // 最后活跃时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                  // 更新时间

	// Moderator 由后台授权中间件按角色判定，不落库
	Moderator bool `gorm:"-" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员，nil 用户返回 false
func (u *User) IsAdmin() bool {
	return u != nil && u.Admin
}

// CanModerate 管理员或持有版主角色
func (u *User) CanModerate() bool {
	return u != nil && (u.Admin || u.Moderator)
}

// IsTrusted 是否可信，管理员视为可信
func (u *User) IsTrusted() bool {
	return u != nil && (u.Trusted || u.Admin)
}

// Is 按主键判断是否同一用户
func (u *User) Is(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID != 0 && u.ID == other.ID
}

// Name 展示名称，昵称为空时回退到用户名
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
