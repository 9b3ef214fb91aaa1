package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/fith/sugar/internal/config"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/provider"
	"github.com/fith/sugar/internal/repository"
	"github.com/fith/sugar/internal/seed"
	"github.com/fith/sugar/internal/service"
)

func main() {
	var opts seed.Options
	var tokenTTL time.Duration
	flag.Int64Var(&opts.Seed, "seed", time.Now().UnixNano(), "随机种子，固定后可复现同一批数据")
	flag.IntVar(&opts.Users, "users", 10, "用户数")
	flag.IntVar(&opts.Categories, "categories", 4, "分类数")
	flag.IntVar(&opts.Discussions, "discussions", 30, "讨论数")
	flag.IntVar(&opts.Replies, "replies", 5, "每个讨论的回复数")
	flag.IntVar(&opts.TrustedEvery, "trusted-every", 4, "每隔多少个分类生成一个可信分类，0 为不生成")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "输出的管理员调试令牌有效期")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin(cfg.Forum.DefaultAdmin); err != nil {
		stdLog.Fatalf("Failed to ensure default admin: %v", err)
	}

	container := provider.NewContainer(cfg)
	result, err := seed.New(container, opts.Seed).Run(opts)
	if err != nil {
		stdLog.Fatalf("Seed failed: %v", err)
	}
	stdLog.Printf("Seeded %d users, %d categories, %d discussions, %d posts (seed=%d)",
		result.Users, result.Categories, result.Discussions, result.Posts, opts.Seed)

	// 输出管理员令牌，便于本地调用后台接口
	admin := true
	admins, _, err := container.UserService.List(repository.UserListFilter{Admin: &admin, Page: 1, PageSize: 1})
	if err != nil || len(admins) == 0 {
		stdLog.Printf("No admin user found, skip token output")
		return
	}
	token, err := service.IssueIdentityToken(cfg.UserJWT.SecretKey, cfg.UserJWT.Issuer, &admins[0], tokenTTL)
	if err != nil {
		stdLog.Printf("Issue admin token failed: %v", err)
		return
	}
	fmt.Printf("admin %s token:\n%s\n", admins[0].Username, token)
}
