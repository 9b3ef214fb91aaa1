package repository

import (
	"errors"
	"time"

	"github.com/fith/sugar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// discussionListOrder 置顶优先，其次按最后活跃时间倒序
const discussionListOrder = "sticky DESC, last_post_at DESC, id DESC"

// DiscussionRepository 讨论数据访问接口
type DiscussionRepository interface {
	FindPaginated(filter DiscussionListFilter) (*Page[models.Discussion], error)
	GetByID(id uint, withPosts bool) (*models.Discussion, error)
	Create(discussion *models.Discussion) error
	Update(discussion *models.Discussion) error
	UpdateColumns(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	FirstPost(discussionID uint) (*models.Post, error)
	RecountPosts(id uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormDiscussionRepository
}

// GormDiscussionRepository GORM 实现
type GormDiscussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository 创建讨论仓库
func NewDiscussionRepository(db *gorm.DB) *GormDiscussionRepository {
	return &GormDiscussionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscussionRepository) WithTx(tx *gorm.DB) *GormDiscussionRepository {
	if tx == nil {
		return r
	}
	return &GormDiscussionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormDiscussionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// FindPaginated 分页查询讨论，页码越界时自动夹紧
func (r *GormDiscussionRepository) FindPaginated(filter DiscussionListFilter) (*Page[models.Discussion], error) {
	query := r.db.Model(&models.Discussion{})
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OnlyUntrusted {
		query = query.Where("trusted = ?", false)
	}
	return paginate[models.Discussion](query, filter.Page, filter.Limit, discussionListOrder,
		"Poster", "LastPoster", "Category")
}

// GetByID 根据 ID 获取讨论，withPosts 时按时间顺序带出帖子
func (r *GormDiscussionRepository) GetByID(id uint, withPosts bool) (*models.Discussion, error) {
	query := r.db.Preload("Poster").Preload("LastPoster").Preload("Category")
	if withPosts {
		query = query.Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).Preload("Posts.User")
	}

	var discussion models.Discussion
	if err := query.First(&discussion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discussion, nil
}

// Create 创建讨论，并累加分类与发起人的讨论计数
// 首帖由调用方在同一事务内显式创建
func (r *GormDiscussionRepository) Create(discussion *models.Discussion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if discussion.LastPostAt.IsZero() {
			discussion.LastPostAt = time.Now()
		}
		if discussion.LastPosterID == 0 {
			discussion.LastPosterID = discussion.UserID
		}
		if err := tx.Omit(clause.Associations).Create(discussion).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).
			Where("id = ?", discussion.CategoryID).
			UpdateColumn("discussions_count", gorm.Expr("discussions_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", discussion.UserID).
			UpdateColumn("discussions_count", gorm.Expr("discussions_count + 1")).Error
	})
}

// Update 保存讨论自身字段，不级联关联
func (r *GormDiscussionRepository) Update(discussion *models.Discussion) error {
	return r.db.Omit(clause.Associations).Save(discussion).Error
}

// UpdateColumns 按字段更新讨论
func (r *GormDiscussionRepository) UpdateColumns(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.Model(&models.Discussion{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除讨论及其全部帖子
func (r *GormDiscussionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var discussion models.Discussion
		if err := tx.First(&discussion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("discussion_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Discussion{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).
			Where("id = ? AND discussions_count > 0", discussion.CategoryID).
			UpdateColumn("discussions_count", gorm.Expr("discussions_count - 1")).Error
	})
}

// FirstPost 获取讨论的首帖（最早创建）
func (r *GormDiscussionRepository) FirstPost(discussionID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("discussion_id = ?", discussionID).
		Order("created_at ASC, id ASC").
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// RecountPosts 根据帖子重新计算 posts_count、last_post_at、last_poster_id
func (r *GormDiscussionRepository) RecountPosts(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("discussion_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"posts_count": count,
		}

		var last models.Post
		err := tx.Where("discussion_id = ?", id).Order("created_at DESC, id DESC").First(&last).Error
		switch {
		case err == nil:
			updates["last_post_at"] = last.CreatedAt
			updates["last_poster_id"] = last.UserID
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}
		return tx.Model(&models.Discussion{}).Where("id = ?", id).UpdateColumns(updates).Error
	})
}
