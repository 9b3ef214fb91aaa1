package models

import (
	"strconv"
	"strings"
	"time"
)

// 讨论标签
const (
	LabelSticky = "Sticky"
	LabelClosed = "Closed"
	LabelNSFW   = "NSFW"
)

// unsafeDiscussionAttributes 普通用户不可直接写入的字段
var unsafeDiscussionAttributes = []string{
	"id",
	"sticky",
	"user_id",
	"last_poster_id",
	"posts_count",
	"created_at",
	"last_post_at",
}

// Discussion 讨论主题表
type Discussion struct {
	ID           uint      `gorm:"primarykey" json:"id"`                  // 主键
	Title        string    `gorm:"not null" json:"title"`                 // 标题
	CategoryID   uint      `gorm:"not null;index" json:"category_id"`     // 所属分类
	UserID       uint      `gorm:"not null;index" json:"user_id"`         // 发起人
	LastPosterID uint      `gorm:"index" json:"last_poster_id"`           // 最后回复人
	PostsCount   int       `gorm:"not null;default:0" json:"posts_count"` // 帖子数
	Sticky       bool      `gorm:"not null;index" json:"sticky"`          // 置顶
	Closed       bool      `gorm:"not null" json:"closed"`                // 已关闭
	NSFW         bool      `gorm:"column:nsfw;not null" json:"nsfw"`      // 不宜公开浏览
	Trusted      bool      `gorm:"not null;index" json:"trusted"`         // 继承自分类的可信标记
	CreatedAt    time.Time `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                            // 更新时间
	LastPostAt   time.Time `gorm:"index" json:"last_post_at"`             // 最后活跃时间

	// Body 首帖内容，仅在创建和更新时使用，不落库
	Body string `gorm:"-" json:"body,omitempty"`

	Poster     *User     `gorm:"foreignKey:UserID" json:"poster,omitempty"`
	LastPoster *User     `gorm:"foreignKey:LastPosterID" json:"last_poster,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Posts      []Post    `gorm:"foreignKey:DiscussionID" json:"posts,omitempty"`
}

// TableName 指定表名
func (Discussion) TableName() string {
	return "discussions"
}

// HasLabels 是否带有任意标签
func (d *Discussion) HasLabels() bool {
	return d.Sticky || d.Closed || d.NSFW
}

// Labels 按 置顶/关闭/NSFW 的固定顺序返回标签
func (d *Discussion) Labels() []string {
	labels := make([]string, 0, 3)
	if d.Sticky {
		labels = append(labels, LabelSticky)
	}
	if d.Closed {
		labels = append(labels, LabelClosed)
	}
	if d.NSFW {
		labels = append(labels, LabelNSFW)
	}
	return labels
}

// EditableBy 管理员或发起人可编辑
func (d *Discussion) EditableBy(user *User) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return user.ID != 0 && user.ID == d.UserID
}

// ViewableBy 可信讨论仅对可信用户和管理员可见
func (d *Discussion) ViewableBy(user *User) bool {
	return viewableByTrust(d.Trusted, user)
}

// Param 生成 URL 标识，例如 12-hello_world
func (d *Discussion) Param() string {
	slug := nonWordRun.ReplaceAllString(strings.ToLower(d.Title), "_")
	return strconv.FormatUint(uint64(d.ID), 10) + "-" + slug
}

// Validate 校验讨论字段，onCreate 时首帖内容必填
func (d *Discussion) Validate(onCreate bool) error {
	var errs ValidationErrors
	if d.CategoryID == 0 {
		errs.Add("category_id", "required")
	}
	if strings.TrimSpace(d.Title) == "" {
		errs.Add("title", "required")
	}
	if onCreate && strings.TrimSpace(d.Body) == "" {
		errs.Add("body", "required")
	}
	return errs.OrNil()
}

// SafeDiscussionAttributes 移除普通用户不可写入的字段
// 返回新 map，不修改入参
func SafeDiscussionAttributes(params map[string]interface{}) map[string]interface{} {
	safe := make(map[string]interface{}, len(params))
	for key, value := range params {
		safe[key] = value
	}
	for _, key := range unsafeDiscussionAttributes {
		delete(safe, key)
	}
	return safe
}

// IsUnsafeDiscussionAttribute 判断字段是否在禁写列表中
func IsUnsafeDiscussionAttribute(key string) bool {
	for _, item := range unsafeDiscussionAttributes {
		if item == key {
			return true
		}
	}
	return false
}
