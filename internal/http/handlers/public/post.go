package public

import (
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"

	"github.com/gin-gonic/gin"
)

type postBodyRequest struct {
	Body string `json:"body"`
}

// ListPosts 分页列出讨论内帖子
func (h *Handler) ListPosts(c *gin.Context) {
	discussionID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize, ok := handlershared.ParsePageQuery(c)
	if !ok {
		return
	}
	result, err := h.PostService.List(handlershared.CurrentUser(c), discussionID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RespondPage(c, mapPage(result, postView))
}

// CreatePost 回复讨论
func (h *Handler) CreatePost(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	discussionID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req postBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.Reply(user, discussionID, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("post_created",
		"post_id", post.ID,
		"discussion_id", discussionID,
		"user_id", user.ID,
	)
	response.Success(c, postView(*post))
}

// UpdatePost 修改帖子
func (h *Handler) UpdatePost(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req postBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.Edit(user, id, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, postView(*post))
}
