package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/fith/sugar/internal/authz"
	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/config"
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/i18n"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = handlershared.ContextKeyRequestID
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-Request-ID",
			"Accept-Language",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = logger.Z()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"user_id", currentUserID(c),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	return handlershared.CurrentRequestID(c)
}

func currentUserID(c *gin.Context) uint {
	if user := handlershared.CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// OptionalIdentityMiddleware 可选身份中间件
// 未携带令牌时按游客处理，携带了无效令牌仍返回 401
func OptionalIdentityMiddleware(cfg config.JWTConfig, userRepo repository.UserRepository) gin.HandlerFunc {
	return identityMiddleware(cfg, userRepo, false)
}

// RequiredIdentityMiddleware 必需身份中间件
func RequiredIdentityMiddleware(cfg config.JWTConfig, userRepo repository.UserRepository) gin.HandlerFunc {
	return identityMiddleware(cfg, userRepo, true)
}

func identityMiddleware(cfg config.JWTConfig, userRepo repository.UserRepository, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handlershared.CurrentUser(c) != nil {
			c.Next()
			return
		}
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			if required {
				abortUnauthorized(c, "error.unauthorized")
				return
			}
			c.Next()
			return
		}
		if cfg.SecretKey == "" || userRepo == nil {
			logger.Errorw("identity_verifier_unavailable", "path", c.Request.URL.Path)
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		claims, err := service.ParseIdentityToken(cfg.SecretKey, cfg.Issuer, strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		user, err := resolveIdentity(c, userRepo, claims)
		if err != nil {
			logger.Errorw("identity_resolve_failed", "user_id", claims.UserID, "error", err)
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if user == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set(handlershared.ContextKeyUserID, user.ID)
		c.Set(handlershared.ContextKeyCurrentUser, user)
		c.Next()
	}
}

// resolveIdentity 优先读取身份快照，未命中时回源数据库并回填
// 令牌版本不一致时返回 nil
func resolveIdentity(c *gin.Context, userRepo repository.UserRepository, claims *service.IdentityClaims) (*models.User, error) {
	ctx := c.Request.Context()
	if cached, hit, cacheErr := cache.GetUserAuthState(ctx, claims.UserID); cacheErr == nil && hit && cached != nil {
		if cached.TokenVersion != claims.TokenVersion {
			return nil, nil
		}
		return cached.User(), nil
	}

	user, err := userRepo.GetByID(claims.UserID)
	if err != nil || user == nil {
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_failed", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
// 管理员标记直接放行，其余用户按角色策略判定，命中后标记为版主
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handlershared.CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		decision, err := authzService.Authorize(user, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"user_id", user.ID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortForbidden(c, "error.authz_failed")
			return
		}
		switch decision {
		case authz.DecisionAdmin:
			c.Next()
			return
		case authz.DecisionBanned:
			abortForbidden(c, "error.user_banned")
			return
		case authz.DecisionDeny:
			logger.Warnw("admin_rbac_permission_denied",
				"user_id", user.ID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			abortForbidden(c, "error.forbidden")
			return
		}

		user.Moderator = true
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

func abortForbidden(c *gin.Context, key string) {
	response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}
