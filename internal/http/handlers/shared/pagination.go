package shared

import (
	"strconv"
	"strings"

	"github.com/fith/sugar/internal/constants"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/i18n"
	"github.com/fith/sugar/internal/repository"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageLimit
	}
	if pageSize > constants.MaxPageLimit {
		pageSize = constants.MaxPageLimit
	}
	return page, pageSize
}

// ParsePageQuery 读取 page/page_size 查询参数
// page_size 缺省时返回 0，由服务层套用配置的默认值；超过上限时返回 400
func ParsePageQuery(c *gin.Context) (int, int, bool) {
	page := parsePositiveInt(c.Query("page"))
	pageSize := parsePositiveInt(c.Query("page_size"))
	if pageSize > constants.MaxPageLimit {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.page_too_large", constants.MaxPageLimit)
		RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return 0, 0, false
	}
	if page < 1 {
		page = 1
	}
	return page, pageSize, true
}

// RespondPage 以分页结构返回结果集
func RespondPage[T any](c *gin.Context, page *repository.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page.CurrentPage,
		PageSize:  page.Limit,
		Total:     page.TotalCount,
		TotalPage: int64(page.TotalPages),
		Offset:    page.Offset,
	})
}

func parsePositiveInt(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
