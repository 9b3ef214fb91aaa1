package models

import (
	"strconv"
	"strings"
	"time"
)

// Category 讨论分类表
// Position 为 1..n 的连续排序位次
type Category struct {
	ID               uint      `gorm:"primarykey" json:"id"`                        // 主键
	Name             string    `gorm:"not null" json:"name"`                        // 名称
	Description      string    `gorm:"type:text" json:"description"`                // 描述
	Position         int       `gorm:"not null;default:0;index" json:"position"`    // 排序位次
	Trusted          bool      `gorm:"not null;index" json:"trusted"`               // 仅可信用户可见
	DiscussionsCount int       `gorm:"not null;default:0" json:"discussions_count"` // 讨论数
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                  // 更新时间

	Discussions []Discussion `gorm:"foreignKey:CategoryID" json:"-"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// ViewableBy 判断分类对用户是否可见
func (c *Category) ViewableBy(user *User) bool {
	if c == nil {
		return false
	}
	return viewableByTrust(c.Trusted, user)
}

// Param 生成 URL 标识
// workSafe 为 true 时只保留 ID
func (c *Category) Param(workSafe bool) string {
	id := strconv.FormatUint(uint64(c.ID), 10)
	if workSafe {
		return id
	}
	return id + ";" + nonWordRun.ReplaceAllString(c.Name, "-")
}

// Validate 校验分类字段
func (c *Category) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.Name) == "" {
		errs.Add("name", "required")
	}
	return errs.OrNil()
}

func viewableByTrust(trusted bool, user *User) bool {
	if !trusted {
		return true
	}
	return user.IsTrusted()
}
