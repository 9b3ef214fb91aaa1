package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"

	"gorm.io/gorm"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo     repository.CategoryRepository
	cacheTTL time.Duration
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository, cacheTTL time.Duration) *CategoryService {
	return &CategoryService{repo: repo, cacheTTL: cacheTTL}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name        string
	Description string
	Trusted     *bool
}

// List 按位次列出对用户可见的分类
func (s *CategoryService) List(viewer *models.User) ([]models.Category, error) {
	all, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	visible := make([]models.Category, 0, len(all))
	for i := range all {
		if all[i].ViewableBy(viewer) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

func (s *CategoryService) loadAll() ([]models.Category, error) {
	ctx := context.Background()
	if cached, hit, err := cache.GetCategoryList(ctx); err != nil {
		logger.Warnw("category_cache_get_failed", "error", err)
	} else if hit {
		return cached, nil
	}
	categories, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if err := cache.SetCategoryList(ctx, categories, s.cacheTTL); err != nil {
		logger.Warnw("category_cache_set_failed", "error", err)
	}
	return categories, nil
}

// Get 获取单个分类，不可见时视为不存在
func (s *CategoryService) Get(viewer *models.User, id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil || !category.ViewableBy(viewer) {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类，位次追加到末尾
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	category := models.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if input.Trusted != nil {
		category.Trusted = *input.Trusted
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	s.invalidate()
	return &category, nil
}

// Update 更新分类，可信标记变化时同步到下属讨论与帖子
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	category.Name = strings.TrimSpace(input.Name)
	category.Description = strings.TrimSpace(input.Description)
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	if input.Trusted != nil && *input.Trusted != category.Trusted {
		if err := s.repo.SetTrusted(id, *input.Trusted); err != nil {
			return nil, err
		}
		category.Trusted = *input.Trusted
	}
	s.invalidate()
	return category, nil
}

// Delete 删除分类，仍有讨论时拒绝
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.repo.CountDiscussions(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Move 调整分类位次
func (s *CategoryService) Move(id uint, position int) error {
	if err := s.repo.Move(id, position); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.invalidate()
	return nil
}

// SetTrusted 设置分类可信标记
func (s *CategoryService) SetTrusted(id uint, trusted bool) error {
	if err := s.repo.SetTrusted(id, trusted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.invalidate()
	return nil
}

func (s *CategoryService) invalidate() {
	if err := cache.InvalidateCategoryList(context.Background()); err != nil {
		logger.Warnw("category_cache_invalidate_failed", "error", err)
	}
}
