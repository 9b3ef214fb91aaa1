package admin

import "github.com/fith/sugar/internal/provider"

// Handler 管理端处理器，身份与 RBAC 已由路由中间件校验
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
