// Package dedupe 实现基于 Redis 的事件幂等防护。
// JetStream 的投递语义是至少一次，同一个动作请求可能被重复投递；
// 本包按关联 URN 记录最近处理过的事件，重复投递时直接跳过。
// 防护是尽力而为的：Redis 不可用时按未处理过对待（宁可重复写入，
// 元数据提案本身是 UPSERT 语义，重复提交是幂等的）。
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// keyPrefix 是幂等键的统一前缀。
const keyPrefix = "dataproduct:processed:"

// Config 定义幂等防护配置。
type Config struct {
	// Enabled 是否启用幂等防护
	Enabled bool `yaml:"enabled"`
	// Address Redis 服务器地址，格式为 "host:port"
	Address string `yaml:"address"`
	// Password Redis 密码
	Password string `yaml:"password"`
	// DB Redis 数据库编号
	DB int `yaml:"db"`
	// TTL 是已处理标记的保留时长
	// 默认值：24 小时
	TTL time.Duration `yaml:"ttl"`
}

// Guard 是基于 Redis 的幂等防护。
type Guard struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// New 创建幂等防护并验证 Redis 连接。
func New(cfg Config, logger *logrus.Logger) (*Guard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Guard{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Key 构造给定关联 URN 的幂等键。
func Key(actionRequestURN string) string {
	return keyPrefix + actionRequestURN
}

// Seen 判断给定关联 URN 是否已被处理过。
// 关联 URN 为空时无法构造稳定键，按未处理过对待。
// Redis 出错时记录警告并按未处理过对待（防护失效优于事件丢失）。
func (g *Guard) Seen(ctx context.Context, actionRequestURN string) bool {
	if g == nil || actionRequestURN == "" {
		return false
	}
	n, err := g.client.Exists(ctx, Key(actionRequestURN)).Result()
	if err != nil {
		g.logger.WithError(err).Warn("Dedupe lookup failed, treating event as new")
		return false
	}
	return n > 0
}

// Mark 记录给定关联 URN 已被处理。
func (g *Guard) Mark(ctx context.Context, actionRequestURN string) {
	if g == nil || actionRequestURN == "" {
		return
	}
	if err := g.client.Set(ctx, Key(actionRequestURN), time.Now().UnixMilli(), g.ttl).Err(); err != nil {
		g.logger.WithError(err).Warn("Failed to mark event as processed")
	}
}

// Close 关闭底层 Redis 连接。
func (g *Guard) Close() error {
	if g == nil {
		return nil
	}
	return g.client.Close()
}
