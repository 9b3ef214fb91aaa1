package provider

import (
	"time"

	"github.com/fith/sugar/internal/authz"
	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/config"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/queue"
	"github.com/fith/sugar/internal/repository"
	"github.com/fith/sugar/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	UserRepo       repository.UserRepository
	CategoryRepo   repository.CategoryRepository
	DiscussionRepo repository.DiscussionRepository
	PostRepo       repository.PostRepository
	AuditLogRepo   repository.AuditLogRepository

	// Services
	AuthzService      *authz.Service
	Recounter         *service.Recounter
	UserService       *service.UserService
	CategoryService   *service.CategoryService
	DiscussionService *service.DiscussionService
	PostService       *service.PostService
	AuditService      *service.AuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	return Build(cfg, models.DB, queueClient)
}

// Build 基于给定数据库连接装配仓库与服务，不触碰 Redis 与队列初始化
func Build(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices(db)

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.DiscussionRepo = repository.NewDiscussionRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	forum := c.Config.Forum
	c.Recounter = service.NewRecounter(c.QueueClient, c.DiscussionRepo, c.CategoryRepo, c.UserRepo)
	c.UserService = service.NewUserService(c.UserRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, time.Duration(forum.CacheTTLSeconds)*time.Second)
	c.DiscussionService = service.NewDiscussionService(c.DiscussionRepo, c.CategoryRepo, c.PostRepo, c.Recounter, forum.DiscussionsPerPage)
	c.PostService = service.NewPostService(c.PostRepo, c.DiscussionRepo, c.Recounter, forum.PostsPerPage)
	c.AuditService = service.NewAuditService(c.AuditLogRepo)
}
