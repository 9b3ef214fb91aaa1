package models

import (
	"strings"
	"time"
)

// Post 讨论中的帖子表，按创建时间升序排列
type Post struct {
	ID           uint       `gorm:"primarykey" json:"id"`                // 主键
	DiscussionID uint       `gorm:"not null;index" json:"discussion_id"` // 所属讨论
	UserID       uint       `gorm:"not null;index" json:"user_id"`       // 作者
	Body         string     `gorm:"type:text;not null" json:"body"`      // 内容
	Trusted      bool       `gorm:"not null;index" json:"trusted"`       // 继承自讨论的可信标记
	EditedAt     *time.Time `json:"edited_at"`                           // 最后编辑时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                          // 更新时间

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// EditableBy 管理员或作者可编辑
func (p *Post) EditableBy(user *User) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || (user.ID != 0 && user.ID == p.UserID)
}

// Validate 校验帖子字段
func (p *Post) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(p.Body) == "" {
		errs.Add("body", "required")
	}
	return errs.OrNil()
}
