package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var bodyPolicy = bluemonday.UGCPolicy()

// sanitizeBody 过滤帖子正文中的危险标签
func sanitizeBody(raw string) string {
	return strings.TrimSpace(bodyPolicy.Sanitize(raw))
}
