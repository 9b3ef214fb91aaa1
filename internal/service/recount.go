package service

import (
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/queue"
	"github.com/fith/sugar/internal/repository"
)

// Recounter 计数重算调度，队列可用时异步投递，否则同步执行
type Recounter struct {
	queueClient    *queue.Client
	discussionRepo repository.DiscussionRepository
	categoryRepo   repository.CategoryRepository
	userRepo       repository.UserRepository
}

// NewRecounter 创建计数重算调度
func NewRecounter(
	queueClient *queue.Client,
	discussionRepo repository.DiscussionRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
) *Recounter {
	return &Recounter{
		queueClient:    queueClient,
		discussionRepo: discussionRepo,
		categoryRepo:   categoryRepo,
		userRepo:       userRepo,
	}
}

// Discussion 重算讨论帖子数与最后回复
func (r *Recounter) Discussion(id uint) {
	if r == nil || id == 0 {
		return
	}
	if r.queueClient.Enabled() {
		err := r.queueClient.EnqueueDiscussionRecount(queue.DiscussionRecountPayload{DiscussionID: id})
		if err == nil {
			return
		}
		logger.Warnw("recount_enqueue_failed", "task", "discussion", "discussion_id", id, "error", err)
	}
	if err := r.discussionRepo.RecountPosts(id); err != nil {
		logger.Errorw("recount_discussion_failed", "discussion_id", id, "error", err)
	}
}

// Users 重算用户发帖计数
func (r *Recounter) Users(ids ...uint) {
	if r == nil {
		return
	}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if r.queueClient.Enabled() {
			err := r.queueClient.EnqueueUserRecount(queue.UserRecountPayload{UserID: id})
			if err == nil {
				continue
			}
			logger.Warnw("recount_enqueue_failed", "task", "user", "user_id", id, "error", err)
		}
		if err := r.userRepo.RecountCounters(id); err != nil {
			logger.Errorw("recount_user_failed", "user_id", id, "error", err)
		}
	}
}

// Categories 重算分类讨论数
func (r *Recounter) Categories(ids ...uint) {
	if r == nil {
		return
	}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if r.queueClient.Enabled() {
			err := r.queueClient.EnqueueCategoryRecount(queue.CategoryRecountPayload{CategoryID: id})
			if err == nil {
				continue
			}
			logger.Warnw("recount_enqueue_failed", "task", "category", "category_id", id, "error", err)
		}
		if err := r.categoryRepo.RecountDiscussions(id); err != nil {
			logger.Errorw("recount_category_failed", "category_id", id, "error", err)
		}
	}
}
