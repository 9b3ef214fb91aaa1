package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/constants"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"

	"gorm.io/gorm"
)

// UserService 用户业务服务
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserFlagsInput 用户标记更新输入，nil 表示不修改
type UserFlagsInput struct {
	Admin   *bool
	Trusted *bool
	Banned  *bool
}

// Get 获取用户
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// SetFlags 更新管理员/可信/封禁标记，并清除身份快照
func (s *UserService) SetFlags(id uint, input UserFlagsInput) (*models.User, error) {
	updates := map[string]interface{}{}
	if input.Admin != nil {
		updates[constants.UserFlagAdmin] = *input.Admin
	}
	if input.Trusted != nil {
		updates[constants.UserFlagTrusted] = *input.Trusted
	}
	if input.Banned != nil {
		updates[constants.UserFlagBanned] = *input.Banned
	}
	if len(updates) > 0 {
		if err := s.userRepo.UpdateFlags(id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if err := cache.DelUserAuthState(context.Background(), id); err != nil {
			logger.Warnw("user_auth_state_invalidate_failed", "user_id", id, "error", err)
		}
	}
	return s.Get(id)
}

// EnsureUser 按用户名获取用户，不存在时创建
func (s *UserService) EnsureUser(username, displayName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidField("username")
	}
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	user = &models.User{Username: username, DisplayName: strings.TrimSpace(displayName)}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
