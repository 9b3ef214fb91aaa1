package app

import (
	"errors"
	"net"

	"github.com/fith/sugar/internal/config"
	"github.com/fith/sugar/internal/provider"
	"github.com/fith/sugar/internal/router"
	"github.com/fith/sugar/internal/worker"
)

// ErrWorkerNeedsQueue worker 模式要求开启队列
var ErrWorkerNeedsQueue = errors.New("worker mode requires queue.enabled")

// servicePlan 按模式与队列开关决定启动哪些服务
// all 模式下队列关闭时只起 HTTP，计数在请求内同步重算
func servicePlan(mode string, queueEnabled bool) (withHTTP, withWorker bool, err error) {
	switch mode {
	case ModeAPI:
		return true, false, nil
	case ModeWorker:
		if !queueEnabled {
			return false, false, ErrWorkerNeedsQueue
		}
		return false, true, nil
	default:
		return true, queueEnabled, nil
	}
}

// BuildRunner 装配容器并构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	withHTTP, withWorker, err := servicePlan(mode, cfg.Queue.Enabled)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	var services []Service
	if withHTTP {
		services = append(services, NewHTTPService(listenAddr(cfg), router.SetupRouter(cfg, container)))
	}
	if withWorker {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", listenAddr(opts.Config),
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
		"redis_enabled", opts.Config.Redis.Enabled,
	)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}
