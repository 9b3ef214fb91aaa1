package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/fith/sugar/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims 身份令牌声明
// 令牌由上游签发，TokenVersion 与用户表不一致时视为已吊销
type IdentityClaims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// IssueIdentityToken 签发 HS256 身份令牌，供种子数据与本地调试使用
func IssueIdentityToken(secret, issuer string, user *models.User, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("jwt secret is empty")
	}
	if user == nil || user.ID == 0 {
		return "", fmt.Errorf("user is required")
	}
	now := time.Now()
	claims := IdentityClaims{
		UserID:       user.ID,
		Username:     user.Username,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseIdentityToken 校验签名与签发方并返回声明
func ParseIdentityToken(secret, issuer, tokenString string) (*IdentityClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer = strings.TrimSpace(issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	claims := &IdentityClaims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid identity token")
	}
	return claims, nil
}
