package public

import (
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMe 当前用户信息
func (h *Handler) GetMe(c *gin.Context) {
	current, ok := handlershared.RequireUser(c)
	if !ok {
		return
	}
	user, err := h.UserService.Get(current.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, userView(user))
}

// GetUser 用户公开信息
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.UserService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, userView(user))
}
