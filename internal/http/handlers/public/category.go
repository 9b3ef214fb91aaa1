package public

import (
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListCategories 按位次列出可见分类
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(handlershared.CurrentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views := make([]CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, h.categoryView(category))
	}
	response.Success(c, views)
}

// GetCategory 获取分类详情
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.CategoryService.Get(handlershared.CurrentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, h.categoryView(*category))
}
