package public

import (
	"strconv"
	"strings"

	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
)

type createDiscussionRequest struct {
	Title      string `json:"title"`
	CategoryID uint   `json:"category_id"`
	Body       string `json:"body"`
	NSFW       bool   `json:"nsfw"`
}

// ListDiscussions 分页列出讨论，可按分类过滤
func (h *Handler) ListDiscussions(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePageQuery(c)
	if !ok {
		return
	}
	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		categoryID = uint(parsed)
	}
	result, err := h.DiscussionService.FindPaginated(handlershared.CurrentUser(c), categoryID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RespondPage(c, mapPage(result, discussionView))
}

// ListUserDiscussions 分页列出某用户发起的讨论
func (h *Handler) ListUserDiscussions(c *gin.Context) {
	userID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize, ok := handlershared.ParsePageQuery(c)
	if !ok {
		return
	}
	result, err := h.DiscussionService.FindByPoster(handlershared.CurrentUser(c), userID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RespondPage(c, mapPage(result, discussionView))
}

// GetDiscussion 获取讨论详情
func (h *Handler) GetDiscussion(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	discussion, err := h.DiscussionService.Get(handlershared.CurrentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, discussionView(*discussion))
}

// CreateDiscussion 发起讨论
func (h *Handler) CreateDiscussion(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	var req createDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discussion, err := h.DiscussionService.Create(user, service.CreateDiscussionInput{
		Title:      req.Title,
		CategoryID: req.CategoryID,
		Body:       req.Body,
		NSFW:       req.NSFW,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("discussion_created",
		"discussion_id", discussion.ID,
		"user_id", user.ID,
		"category_id", discussion.CategoryID,
	)
	response.Success(c, discussionView(*discussion))
}

// UpdateDiscussion 编辑讨论，禁写字段会被忽略
func (h *Handler) UpdateDiscussion(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	params := map[string]interface{}{}
	if err := c.ShouldBindJSON(&params); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discussion, err := h.DiscussionService.ApplyUpdate(user, id, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, discussionView(*discussion))
}
