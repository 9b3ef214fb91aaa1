package public

import "github.com/fith/sugar/internal/provider"

// Handler 论坛前台处理器，游客可读，写操作由会员路由组限定
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
