package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fith/sugar/internal/config"
	"github.com/fith/sugar/internal/logger"
	"github.com/fith/sugar/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 队列消费服务，附带分类计数定时校准
type Service struct {
	server         *asynq.Server
	mux            *asynq.ServeMux
	consumer       *Consumer
	reconcileEvery time.Duration
}

// NewService 创建队列消费服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	switch {
	case cfg == nil || !cfg.Enabled:
		return nil, errors.New("queue disabled")
	case consumer == nil:
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:         asynq.NewServer(opt, serverCfg),
		mux:            mux,
		consumer:       consumer,
		reconcileEvery: time.Duration(cfg.ReconcileMinutes) * time.Minute,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string { return "worker" }

// Start 启动消费并阻塞到 ctx 结束，系统信号由 Runner 处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	if s.reconcileEvery > 0 {
		go s.reconcileLoop(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束后关闭
func (s *Service) Stop(context.Context) error {
	if s != nil && s.server != nil {
		s.server.Shutdown()
	}
	return nil
}

func (s *Service) reconcileLoop(ctx context.Context) {
	logger.Infow("worker_reconcile_loop_started", "interval", s.reconcileEvery.String())
	s.consumer.reconcileCategories()

	ticker := time.NewTicker(s.reconcileEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.consumer.reconcileCategories()
		}
	}
}
