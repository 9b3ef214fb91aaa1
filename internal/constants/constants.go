package constants

// 分页常量
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// 内置角色常量
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// 用户标记字段常量
const (
	UserFlagAdmin   = "admin"
	UserFlagTrusted = "trusted"
	UserFlagBanned  = "banned"
)

// 讨论可更新字段常量
const (
	DiscussionFieldTitle      = "title"
	DiscussionFieldCategoryID = "category_id"
	DiscussionFieldClosed     = "closed"
	DiscussionFieldNSFW       = "nsfw"
	DiscussionFieldBody       = "body"
)

// 队列常量
const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// 异步任务类型常量
const (
	TaskDiscussionRecount = "forum:discussion_recount"
	TaskUserRecount       = "forum:user_recount"
	TaskCategoryRecount   = "forum:category_recount"
)
