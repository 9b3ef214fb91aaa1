package cache

import (
	"context"
	"time"

	"github.com/fith/sugar/internal/models"
)

const categoryListKey = "forum:categories"

// GetCategoryList 读取分类列表缓存
func GetCategoryList(ctx context.Context) ([]models.Category, bool, error) {
	var categories []models.Category
	hit, err := GetJSON(ctx, categoryListKey, &categories)
	if err != nil || !hit {
		return nil, hit, err
	}
	return categories, true, nil
}

// SetCategoryList 写入分类列表缓存，ttl 为 0 时不写入
func SetCategoryList(ctx context.Context, categories []models.Category, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, categoryListKey, categories, ttl)
}

// InvalidateCategoryList 清除分类列表缓存
func InvalidateCategoryList(ctx context.Context) error {
	return Del(ctx, categoryListKey)
}
