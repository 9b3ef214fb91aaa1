package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fith/sugar/internal/app"
	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/config"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()
	runMode, err := app.ParseMode(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", err)
		os.Exit(2)
	}

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	printStartupBanner(cfg)

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.UserJWT.SecretKey) {
			stdLog.Fatalf("身份令牌 secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
	} else if isWeakSecret(cfg.UserJWT.SecretKey) {
		stdLog.Printf("警告: 身份令牌 secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 确保存在一名管理员
	if err := models.InitDefaultAdmin(cfg.Forum.DefaultAdmin); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	runErr := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    runMode,
	})
	if err := cache.Close(); err != nil {
		logger.Warnw("redis_close_failed", "error", err)
	}
	logger.Sync()
	if runErr != nil {
		stdLog.Fatalf("服务运行失败: %v", runErr)
	}
}

func printStartupBanner(cfg *config.Config) {
	name := strings.TrimSpace(cfg.Forum.Name)
	if name == "" {
		name = "Sugar"
	}
	fmt.Println(ansiCyan + ansiBold + "  ____                          " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + " / ___| _   _  __ _  __ _ _ __  " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + " \\___ \\| | | |/ _` |/ _` | '__| " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "  ___) | |_| | (_| | (_| | |    " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + " |____/ \\__,_|\\__, |\\__,_|_|    " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "              |___/             " + ansiReset)
	fmt.Printf(ansiDim+"%s listening on %s:%s"+ansiReset+"\n", name, cfg.Server.Host, cfg.Server.Port)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
