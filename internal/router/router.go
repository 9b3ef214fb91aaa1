package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fith/sugar/internal/authz"
	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/config"
	adminhandlers "github.com/fith/sugar/internal/http/handlers/admin"
	publichandlers "github.com/fith/sugar/internal/http/handlers/public"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	metrics := NewMetrics()
	writeLimit := RateLimitMiddleware(cache.Client(), RateLimitRule{
		Prefix:        cache.Key("rate:write"),
		WindowSeconds: cfg.Security.WriteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WriteRateLimit.MaxRequests,
	}, KeyByUserOrIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(metrics.Middleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(OptionalIdentityMiddleware(cfg.UserJWT, c.UserRepo))
	{
		// 公开接口（游客可访问，登录用户可见范围更大）
		apiV1.GET("/categories", publicHandler.ListCategories)
		apiV1.GET("/categories/:id", publicHandler.GetCategory)
		apiV1.GET("/discussions", publicHandler.ListDiscussions)
		apiV1.GET("/discussions/:id", publicHandler.GetDiscussion)
		apiV1.GET("/discussions/:id/posts", publicHandler.ListPosts)
		apiV1.GET("/users/:id", publicHandler.GetUser)
		apiV1.GET("/users/:id/discussions", publicHandler.ListUserDiscussions)

		// 会员接口（需身份）
		member := apiV1.Group("")
		member.Use(RequiredIdentityMiddleware(cfg.UserJWT, c.UserRepo))
		{
			member.GET("/me", publicHandler.GetMe)
			member.POST("/discussions", writeLimit, publicHandler.CreateDiscussion)
			member.PATCH("/discussions/:id", writeLimit, publicHandler.UpdateDiscussion)
			member.POST("/discussions/:id/posts", writeLimit, publicHandler.CreatePost)
			member.PUT("/posts/:id", writeLimit, publicHandler.UpdatePost)
		}

		// 管理接口
		admin := apiV1.Group("/admin")
		admin.Use(RequiredIdentityMiddleware(cfg.UserJWT, c.UserRepo), AdminRBACMiddleware(c.AuthzService))
		{
			// 分类管理
			admin.GET("/categories", publicHandler.ListCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)
			admin.PUT("/categories/:id/position", adminHandler.MoveCategory)
			admin.PUT("/categories/:id/trusted", adminHandler.SetCategoryTrusted)

			// 讨论与帖子管理
			admin.PUT("/discussions/:id/sticky", adminHandler.SetDiscussionSticky)
			admin.PUT("/discussions/:id/closed", adminHandler.SetDiscussionClosed)
			admin.DELETE("/discussions/:id", adminHandler.DeleteDiscussion)
			admin.DELETE("/posts/:id", adminHandler.DeletePost)

			// 用户管理
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id/flags", adminHandler.UpdateUserFlags)
			admin.GET("/users/:id/roles", adminHandler.GetUserRoles)
			admin.PUT("/users/:id/roles", adminHandler.SetUserRoles)

			// 权限管理
			admin.GET("/authz/roles", adminHandler.ListRoles)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
			admin.POST("/authz/roles/:role/policies", adminHandler.GrantRolePolicy)
			admin.DELETE("/authz/roles/:role/policies", adminHandler.RevokeRolePolicy)
			admin.GET("/authz/roles/:role/users", adminHandler.ListRoleUsers)
			admin.GET("/authz/audit-logs", adminHandler.ListAuditLogs)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查与指标
	r.GET("/healthz", healthHandler(c))
	r.GET("/metrics", metrics.Handler())

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}

// healthHandler 检查数据库与 Redis，任一失败返回 503
func healthHandler(container *provider.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true
		if err := pingDB(ctx, container); err != nil {
			logger.Warnw("healthz_database_failed", "error", err)
			checks["database"] = "error"
			healthy = false
		}
		if !cache.Enabled() {
			checks["redis"] = "disabled"
		} else if err := cache.Ping(ctx); err != nil {
			logger.Warnw("healthz_redis_failed", "error", err)
			checks["redis"] = "error"
			healthy = false
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	}
}

func pingDB(ctx context.Context, container *provider.Container) error {
	if container == nil || container.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := container.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
