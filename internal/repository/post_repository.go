package repository

import (
	"errors"

	"github.com/fith/sugar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postListOrder 帖子按创建时间升序
const postListOrder = "created_at ASC, id ASC"

// PostRepository 帖子数据访问接口
type PostRepository interface {
	ListByDiscussion(discussionID uint, page, limit int) (*Page[models.Post], error)
	GetByID(id uint) (*models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	Delete(id uint) error
	CountByDiscussion(discussionID uint) (int64, error)
	AuthorIDs(discussionID uint) ([]uint, error)
	SetTrustedByDiscussion(discussionID uint, trusted bool) error
	WithTx(tx *gorm.DB) *GormPostRepository
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建帖子仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPostRepository) WithTx(tx *gorm.DB) *GormPostRepository {
	if tx == nil {
		return r
	}
	return &GormPostRepository{db: tx}
}

// ListByDiscussion 分页列出讨论内帖子
func (r *GormPostRepository) ListByDiscussion(discussionID uint, page, limit int) (*Page[models.Post], error) {
	query := r.db.Model(&models.Post{}).Where("discussion_id = ?", discussionID)
	return paginate[models.Post](query, page, limit, postListOrder, "User")
}

// GetByID 根据 ID 获取帖子
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create 创建帖子，同时维护讨论与作者的计数
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Discussion{}).
			Where("id = ?", post.DiscussionID).
			UpdateColumns(map[string]interface{}{
				"posts_count":    gorm.Expr("posts_count + 1"),
				"last_post_at":   post.CreatedAt,
				"last_poster_id": post.UserID,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error
	})
}

// Update 更新帖子
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

// Delete 删除帖子，讨论计数由调用方重算
func (r *GormPostRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND posts_count > 0", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count - 1")).Error
	})
}

// CountByDiscussion 统计讨论内帖子数
func (r *GormPostRepository) CountByDiscussion(discussionID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Post{}).Where("discussion_id = ?", discussionID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AuthorIDs 列出讨论内全部作者 ID
func (r *GormPostRepository) AuthorIDs(discussionID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Post{}).
		Where("discussion_id = ?", discussionID).
		Distinct().
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SetTrustedByDiscussion 同步讨论内帖子的可信标记
func (r *GormPostRepository) SetTrustedByDiscussion(discussionID uint, trusted bool) error {
	return r.db.Model(&models.Post{}).
		Where("discussion_id = ?", discussionID).
		UpdateColumn("trusted", trusted).Error
}
