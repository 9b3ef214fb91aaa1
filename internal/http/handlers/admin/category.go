package admin

import (
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Trusted     *bool  `json:"trusted"`
}

type positionRequest struct {
	Position *int `json:"position"`
}

type trustedRequest struct {
	Trusted *bool `json:"trusted"`
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Trusted:     req.Trusted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_category_created", "category_id", category.ID, "name", category.Name)
	response.Success(c, category)
}

// UpdateCategory 修改分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Trusted:     req.Trusted,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除空分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_category_deleted", "category_id", id)
	response.Success(c, gin.H{"id": id})
}

// MoveCategory 调整分类排序位置
func (h *Handler) MoveCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Position == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CategoryService.Move(id, *req.Position); err != nil {
		respondServiceError(c, err)
		return
	}
	category, err := h.CategoryService.Get(handlershared.CurrentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// SetCategoryTrusted 切换分类可信标记，同步到分类下的讨论与帖子
func (h *Handler) SetCategoryTrusted(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req trustedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Trusted == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CategoryService.SetTrusted(id, *req.Trusted); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_category_trusted", "category_id", id, "trusted", *req.Trusted)
	category, err := h.CategoryService.Get(handlershared.CurrentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}
