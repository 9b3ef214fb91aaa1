package models

import (
	"strings"

	"github.com/fith/sugar/internal/logger"
)

// InitDefaultAdmin 确保默认管理员用户存在
// 账号由上游身份服务签发令牌，这里只保证本地存在一条 admin 记录
func InitDefaultAdmin(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}

	var count int64
	if err := DB.Model(&User{}).Where("admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var existing User
	err := DB.Where("username = ?", username).Limit(1).Find(&existing).Error
	if err != nil {
		return err
	}
	if existing.ID != 0 {
		if err := DB.Model(&existing).Update("admin", true).Error; err != nil {
			return err
		}
		logger.Warnw("default_admin_promoted", "user_id", existing.ID, "username", username)
		return nil
	}

	user := User{
		Username:    username,
		DisplayName: username,
		Admin:       true,
		Trusted:     true,
	}
	if err := DB.Create(&user).Error; err != nil {
		return err
	}
	logger.Warnw("default_admin_created", "user_id", user.ID, "username", username)
	return nil
}
