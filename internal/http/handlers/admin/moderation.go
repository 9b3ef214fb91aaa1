package admin

import (
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
)

type stickyRequest struct {
	Sticky *bool `json:"sticky"`
}

type closedRequest struct {
	Closed *bool `json:"closed"`
}

// SetDiscussionSticky 置顶或取消置顶
func (h *Handler) SetDiscussionSticky(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req stickyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Sticky == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discussion, err := h.DiscussionService.SetSticky(user, id, *req.Sticky)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_discussion_sticky", "discussion_id", id, "sticky", *req.Sticky, "operator_id", user.ID)
	object, method := requestTarget(c)
	h.recordAudit(c, service.AuditRecordInput{
		Operator: user,
		Action:   service.AuditDiscussionSticky,
		Object:   object,
		Method:   method,
		Detail:   models.JSON{"discussion_id": id, "sticky": *req.Sticky},
	})
	response.Success(c, discussion)
}

// SetDiscussionClosed 关闭或重新开放讨论
func (h *Handler) SetDiscussionClosed(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req closedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Closed == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discussion, err := h.DiscussionService.SetClosed(user, id, *req.Closed)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_discussion_closed", "discussion_id", id, "closed", *req.Closed, "operator_id", user.ID)
	object, method := requestTarget(c)
	h.recordAudit(c, service.AuditRecordInput{
		Operator: user,
		Action:   service.AuditDiscussionClosed,
		Object:   object,
		Method:   method,
		Detail:   models.JSON{"discussion_id": id, "closed": *req.Closed},
	})
	response.Success(c, discussion)
}

// DeleteDiscussion 删除讨论及其全部帖子
func (h *Handler) DeleteDiscussion(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscussionService.Delete(user, id); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_discussion_deleted", "discussion_id", id, "operator_id", user.ID)
	object, method := requestTarget(c)
	h.recordAudit(c, service.AuditRecordInput{
		Operator: user,
		Action:   service.AuditDiscussionDelete,
		Object:   object,
		Method:   method,
		Detail:   models.JSON{"discussion_id": id},
	})
	response.Success(c, gin.H{"id": id})
}

// DeletePost 删除回复
func (h *Handler) DeletePost(c *gin.Context) {
	user, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PostService.Delete(user, id); err != nil {
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("admin_post_deleted", "post_id", id, "operator_id", user.ID)
	object, method := requestTarget(c)
	h.recordAudit(c, service.AuditRecordInput{
		Operator: user,
		Action:   service.AuditPostDelete,
		Object:   object,
		Method:   method,
		Detail:   models.JSON{"post_id": id},
	})
	response.Success(c, gin.H{"id": id})
}
