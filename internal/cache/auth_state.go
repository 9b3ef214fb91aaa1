package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fith/sugar/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 用户身份快照
// 鉴权中间件命中快照时不再查询数据库
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Admin        bool   `json:"admin"`
	Trusted      bool   `json:"trusted"`
	Banned       bool   `json:"banned"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

func userAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

// BuildUserAuthState 从用户模型构建身份快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:       user.ID,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		Admin:        user.Admin,
		Trusted:      user.Trusted,
		Banned:       user.Banned,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// User 将快照还原为用户模型，计数类字段不在快照中
func (s *UserAuthState) User() *models.User {
	if s == nil {
		return nil
	}
	return &models.User{
		ID:           s.UserID,
		Username:     s.Username,
		DisplayName:  s.DisplayName,
		Admin:        s.Admin,
		Trusted:      s.Trusted,
		Banned:       s.Banned,
		TokenVersion: s.TokenVersion,
	}
}

// GetUserAuthState 获取用户身份快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入用户身份快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户身份快照
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
