package queue

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fith/sugar/internal/config"
	"github.com/fith/sugar/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// LowQueue 低优先级队列名称
	LowQueue = constants.QueueLow

	// recountDedupWindow 同一对象的重算任务在窗口内只保留一个
	recountDedupWindow = 5 * time.Second
	recountMaxRetry    = 3
	recountTimeout     = 30 * time.Second
)

// Client 队列客户端，未启用时所有投递均为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueDiscussionRecount 推送讨论计数重算任务
func (c *Client) EnqueueDiscussionRecount(payload DiscussionRecountPayload, opts ...asynq.Option) error {
	return c.submit(DefaultQueue, func() (*asynq.Task, error) { return NewDiscussionRecountTask(payload) }, opts)
}

// EnqueueUserRecount 推送用户计数重算任务
func (c *Client) EnqueueUserRecount(payload UserRecountPayload, opts ...asynq.Option) error {
	return c.submit(LowQueue, func() (*asynq.Task, error) { return NewUserRecountTask(payload) }, opts)
}

// EnqueueCategoryRecount 推送分类计数重算任务
func (c *Client) EnqueueCategoryRecount(payload CategoryRecountPayload, opts ...asynq.Option) error {
	return c.submit(LowQueue, func() (*asynq.Task, error) { return NewCategoryRecountTask(payload) }, opts)
}

func (c *Client) submit(queueName string, build func() (*asynq.Task, error), opts []asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := build()
	if err != nil {
		return err
	}
	options := append(recountOptions(queueName), opts...)
	_, err = c.client.Enqueue(task, options...)
	return ignoreDuplicate(err)
}

// recountOptions 重算任务幂等，允许重试并按载荷去重
func recountOptions(queueName string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(recountMaxRetry),
		asynq.Timeout(recountTimeout),
		asynq.Unique(recountDedupWindow),
	}
}

// ignoreDuplicate 已有相同任务排队时无需再次投递
func ignoreDuplicate(err error) error {
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{DefaultQueue: 3, LowQueue: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), serverCfg
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host, port := "127.0.0.1", 6379
	if h := strings.TrimSpace(cfg.Host); h != "" {
		host = h
	}
	if cfg.Port > 0 {
		port = cfg.Port
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
