package repository

import (
	"errors"

	"github.com/fith/sugar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	List() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(id uint) error
	Move(id uint, position int) error
	SetTrusted(id uint, trusted bool) error
	CountDiscussions(categoryID uint) (int64, error)
	RecountDiscussions(categoryID uint) error
	WithTx(tx *gorm.DB) *GormCategoryRepository
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCategoryRepository) WithTx(tx *gorm.DB) *GormCategoryRepository {
	if tx == nil {
		return r
	}
	return &GormCategoryRepository{db: tx}
}

// List 按位次升序返回分类
func (r *GormCategoryRepository) List() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("position ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID 根据 ID 获取分类
func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// Create 创建分类，位次追加到末尾
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&models.Category{}).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return err
		}
		category.Position = maxPosition + 1
		return tx.Omit(clause.Associations).Create(category).Error
	})
}

// Update 更新分类，不改动位次
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Model(category).
		Omit(clause.Associations).
		Select("name", "description", "updated_at").
		Updates(category).Error
}

// Delete 删除分类，并让后续分类位次前移补齐空位
func (r *GormCategoryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).
			Where("position > ?", category.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
}

// Move 将分类移动到指定位次，超出范围时夹到两端，其余分类保持连续
func (r *GormCategoryRepository) Move(id uint, position int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var categories []models.Category
		if err := tx.Order("position ASC, id ASC").Find(&categories).Error; err != nil {
			return err
		}
		index := -1
		for i := range categories {
			if categories[i].ID == id {
				index = i
				break
			}
		}
		if index < 0 {
			return gorm.ErrRecordNotFound
		}

		target := categories[index]
		ordered := make([]models.Category, 0, len(categories))
		ordered = append(ordered, categories[:index]...)
		ordered = append(ordered, categories[index+1:]...)

		if position < 1 {
			position = 1
		}
		if position > len(categories) {
			position = len(categories)
		}
		ordered = append(ordered[:position-1], append([]models.Category{target}, ordered[position-1:]...)...)

		for i := range ordered {
			want := i + 1
			if ordered[i].Position == want {
				continue
			}
			if err := tx.Model(&models.Category{}).
				Where("id = ?", ordered[i].ID).
				UpdateColumn("position", want).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetTrusted 更新分类可信标记，并同步到分类下全部讨论与帖子
func (r *GormCategoryRepository) SetTrusted(id uint, trusted bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Category{}).Where("id = ?", id).Update("trusted", trusted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&models.Discussion{}).
			Where("category_id = ?", id).
			UpdateColumn("trusted", trusted).Error; err != nil {
			return err
		}
		discussionIDs := tx.Model(&models.Discussion{}).Select("id").Where("category_id = ?", id)
		return tx.Model(&models.Post{}).
			Where("discussion_id IN (?)", discussionIDs).
			UpdateColumn("trusted", trusted).Error
	})
}

// CountDiscussions 统计分类下讨论数
func (r *GormCategoryRepository) CountDiscussions(categoryID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Discussion{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RecountDiscussions 重新统计分类下讨论数
func (r *GormCategoryRepository) RecountDiscussions(categoryID uint) error {
	count, err := r.CountDiscussions(categoryID)
	if err != nil {
		return err
	}
	return r.db.Model(&models.Category{}).
		Where("id = ?", categoryID).
		UpdateColumn("discussions_count", count).Error
}
