package i18n

// catalog 各语言的消息表
var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                "请求参数错误",
		"error.validation_failed":          "提交内容校验失败",
		"error.unauthorized":               "未登录或登录已失效",
		"error.forbidden":                  "没有权限执行该操作",
		"error.not_found":                  "资源不存在",
		"error.too_many_requests":          "操作过于频繁，请稍后再试",
		"error.rate_limited":               "操作过于频繁，请 %d 秒后再试",
		"error.internal_error":             "服务器内部错误",
		"error.token_invalid":              "身份令牌无效",
		"error.user_banned":                "账号已被封禁",
		"error.user_not_found":             "用户不存在",
		"error.category_not_found":         "分类不存在",
		"error.category_in_use":            "分类下仍有讨论，无法删除",
		"error.discussion_not_found":       "讨论不存在",
		"error.discussion_closed":          "讨论已关闭，无法回复",
		"error.post_not_found":             "帖子不存在",
		"error.first_post_delete_rejected": "首帖不能单独删除",
		"error.role_invalid":               "角色无效",
		"error.role_builtin":               "预置角色不可删除",
		"error.authz_failed":               "权限校验失败",
		"error.page_too_large":             "每页数量最多 %d 条",
	},
	LocaleTW: {
		"error.bad_request":                "請求參數錯誤",
		"error.validation_failed":          "提交內容校驗失敗",
		"error.unauthorized":               "未登入或登入已失效",
		"error.forbidden":                  "沒有權限執行該操作",
		"error.not_found":                  "資源不存在",
		"error.too_many_requests":          "操作過於頻繁，請稍後再試",
		"error.rate_limited":               "操作過於頻繁，請 %d 秒後再試",
		"error.internal_error":             "伺服器內部錯誤",
		"error.token_invalid":              "身分令牌無效",
		"error.user_banned":                "帳號已被封鎖",
		"error.user_not_found":             "使用者不存在",
		"error.category_not_found":         "分類不存在",
		"error.category_in_use":            "分類下仍有討論，無法刪除",
		"error.discussion_not_found":       "討論不存在",
		"error.discussion_closed":          "討論已關閉，無法回覆",
		"error.post_not_found":             "貼文不存在",
		"error.first_post_delete_rejected": "首帖不能單獨刪除",
		"error.role_invalid":               "角色無效",
		"error.role_builtin":               "預置角色不可刪除",
		"error.authz_failed":               "權限校驗失敗",
		"error.page_too_large":             "每頁數量最多 %d 筆",
	},
	LocaleEN: {
		"error.bad_request":                "Invalid request parameters",
		"error.validation_failed":          "Validation failed",
		"error.unauthorized":               "Authentication required",
		"error.forbidden":                  "You are not allowed to do that",
		"error.not_found":                  "Not found",
		"error.too_many_requests":          "Too many requests, slow down",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"error.internal_error":             "Internal server error",
		"error.token_invalid":              "Invalid identity token",
		"error.user_banned":                "This account is banned",
		"error.user_not_found":             "User not found",
		"error.category_not_found":         "Category not found",
		"error.category_in_use":            "Category still has discussions",
		"error.discussion_not_found":       "Discussion not found",
		"error.discussion_closed":          "Discussion is closed",
		"error.post_not_found":             "Post not found",
		"error.first_post_delete_rejected": "The first post cannot be deleted on its own",
		"error.role_invalid":               "Invalid role",
		"error.role_builtin":               "Built-in roles cannot be deleted",
		"error.authz_failed":               "Authorization check failed",
		"error.page_too_large":             "Page size is limited to %d",
	},
}
