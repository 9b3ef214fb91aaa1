package repository

import (
	"errors"
	"strings"

	"github.com/fith/sugar/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	ListByIDs(ids []uint) ([]models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateFlags(id uint, updates map[string]interface{}) error
	List(filter UserListFilter) ([]models.User, int64, error)
	RecountCounters(id uint) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListByIDs 批量获取用户
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateFlags 更新用户标记，封禁时令已签发的身份快照失效
func (r *GormUserRepository) UpdateFlags(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	payload := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		payload[key] = value
	}
	if banned, ok := payload["banned"].(bool); ok && banned {
		payload["token_version"] = gorm.Expr("token_version + 1")
	}
	result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(payload)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"username", "display_name"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}
	if filter.Admin != nil {
		query = query.Where("admin = ?", *filter.Admin)
	}
	if filter.Trusted != nil {
		query = query.Where("trusted = ?", *filter.Trusted)
	}
	if filter.Banned != nil {
		query = query.Where("banned = ?", *filter.Banned)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := query.Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// RecountCounters 重新统计用户的讨论数与帖子数
func (r *GormUserRepository) RecountCounters(id uint) error {
	var discussions int64
	if err := r.db.Model(&models.Discussion{}).Where("user_id = ?", id).Count(&discussions).Error; err != nil {
		return err
	}
	var posts int64
	if err := r.db.Model(&models.Post{}).Where("user_id = ?", id).Count(&posts).Error; err != nil {
		return err
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"discussions_count": discussions,
		"posts_count":       posts,
	}).Error
}
