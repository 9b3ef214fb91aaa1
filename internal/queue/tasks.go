package queue

import (
	"encoding/json"
	"fmt"

	"github.com/fith/sugar/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDiscussionRecount 讨论帖子数与最后回复重算任务
	TaskDiscussionRecount = constants.TaskDiscussionRecount
	// TaskUserRecount 用户讨论数与发帖数重算任务
	TaskUserRecount = constants.TaskUserRecount
	// TaskCategoryRecount 分类讨论数重算任务
	TaskCategoryRecount = constants.TaskCategoryRecount
)

// DiscussionRecountPayload 讨论重算任务载荷
type DiscussionRecountPayload struct {
	DiscussionID uint `json:"discussion_id"`
}

// UserRecountPayload 用户重算任务载荷
type UserRecountPayload struct {
	UserID uint `json:"user_id"`
}

// CategoryRecountPayload 分类重算任务载荷
type CategoryRecountPayload struct {
	CategoryID uint `json:"category_id"`
}

// NewDiscussionRecountTask 创建讨论重算任务
func NewDiscussionRecountTask(payload DiscussionRecountPayload) (*asynq.Task, error) {
	return newJSONTask(TaskDiscussionRecount, payload)
}

// NewUserRecountTask 创建用户重算任务
func NewUserRecountTask(payload UserRecountPayload) (*asynq.Task, error) {
	return newJSONTask(TaskUserRecount, payload)
}

// NewCategoryRecountTask 创建分类重算任务
func NewCategoryRecountTask(payload CategoryRecountPayload) (*asynq.Task, error) {
	return newJSONTask(TaskCategoryRecount, payload)
}

func newJSONTask(kind string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return asynq.NewTask(kind, body), nil
}
