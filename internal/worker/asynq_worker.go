package worker

import (
	"context"
	"encoding/json"

	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/provider"
	"github.com/fith/sugar/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDiscussionRecount, c.handleDiscussionRecount)
	mux.HandleFunc(queue.TaskUserRecount, c.handleUserRecount)
	mux.HandleFunc(queue.TaskCategoryRecount, c.handleCategoryRecount)
}

func (c *Consumer) handleDiscussionRecount(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_discussion_recount_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DiscussionRecountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_discussion_recount_unmarshal_failed", "error", err)
		return err
	}
	if payload.DiscussionID == 0 {
		logger.Debugw("worker_discussion_recount_skip_invalid_payload", "discussion_id", payload.DiscussionID)
		return nil
	}
	if err := c.DiscussionRepo.RecountPosts(payload.DiscussionID); err != nil {
		logger.Warnw("worker_discussion_recount_failed", "discussion_id", payload.DiscussionID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleUserRecount(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_user_recount_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.UserRecountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_user_recount_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_user_recount_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if err := c.UserRepo.RecountCounters(payload.UserID); err != nil {
		logger.Warnw("worker_user_recount_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCategoryRecount(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_category_recount_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CategoryRecountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_category_recount_unmarshal_failed", "error", err)
		return err
	}
	if payload.CategoryID == 0 {
		logger.Debugw("worker_category_recount_skip_invalid_payload", "category_id", payload.CategoryID)
		return nil
	}
	if err := c.CategoryRepo.RecountDiscussions(payload.CategoryID); err != nil {
		logger.Warnw("worker_category_recount_failed", "category_id", payload.CategoryID, "error", err)
		return err
	}
	return nil
}

// reconcileCategories 全量校准分类讨论数
func (c *Consumer) reconcileCategories() {
	if c == nil || c.Container == nil || c.CategoryRepo == nil {
		return
	}
	categories, err := c.CategoryRepo.List()
	if err != nil {
		logger.Warnw("worker_category_reconcile_list_failed", "error", err)
		return
	}
	for _, category := range categories {
		if err := c.CategoryRepo.RecountDiscussions(category.ID); err != nil {
			logger.Warnw("worker_category_reconcile_failed", "category_id", category.ID, "error", err)
		}
	}
}
