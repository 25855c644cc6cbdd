// Package events 提供与宿主事件管道的 NATS JetStream 对接。
// 宿主管道把动作请求的事件信封作为消息投递到约定的 subject 上，
// 本包负责订阅该 subject 并把原始信封逐条交给动作处理回调。
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Config 定义事件源配置。
type Config struct {
	// NatsURL NATS 消息服务器 URL，如 "nats://localhost:4222"
	NatsURL string `yaml:"nats_url"`
	// Subject 是动作请求事件的 subject（支持通配符）
	// 默认值：actionrequest.>
	Subject string `yaml:"subject"`
	// Durable 是持久化消费者名称
	// 默认值：dataproduct-action
	Durable string `yaml:"durable"`
}

// EnvelopeHandler 定义事件信封处理回调。
// 返回非 nil 错误时消息会被 Nak 以便重投。
type EnvelopeHandler func(ctx context.Context, raw []byte) error

// Source 封装 NATS/JetStream 连接与信封订阅。
type Source struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	cfg    Config
	logger *logrus.Logger
}

// NewSource 连接 NATS 并初始化所需的 JetStream Stream。
func NewSource(cfg Config, logger *logrus.Logger) (*Source, error) {
	if cfg.Subject == "" {
		cfg.Subject = "actionrequest.>"
	}
	if cfg.Durable == "" {
		cfg.Durable = "dataproduct-action"
	}

	nc, err := nats.Connect(cfg.NatsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// 为动作请求事件初始化 Stream（不存在则创建，已存在则尝试更新配置）
	streamCfg := nats.StreamConfig{
		Name:     "ACTION_REQUESTS",
		Subjects: []string{cfg.Subject},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour * 7,
	}
	if _, err := js.AddStream(&streamCfg); err != nil {
		if !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			nc.Close()
			return nil, fmt.Errorf("failed to ensure action request stream: %w", err)
		}
		// Stream 已存在：把期望配置应用上去，失败不致命（旧配置仍可消费）
		if _, err := js.UpdateStream(&streamCfg); err != nil {
			logger.WithError(err).Warn("Failed to update existing action request stream")
		}
	}

	return &Source{
		conn:   nc,
		js:     js,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Close 关闭底层 NATS 连接。
func (s *Source) Close() error {
	s.conn.Close()
	return nil
}

// Subscribe 订阅动作请求事件并把每条信封交给 handler。
// ctx 取消时将自动取消订阅。
// handler 返回错误时消息被 Nak（交由 JetStream 重投），否则 Ack。
func (s *Source) Subscribe(ctx context.Context, handler EnvelopeHandler) error {
	sub, err := s.js.Subscribe(s.cfg.Subject, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			s.logger.WithError(err).WithField("subject", msg.Subject).
				Error("Failed to handle action request event")
			msg.Nak()
			return
		}
		msg.Ack()
	}, nats.Durable(s.cfg.Durable), nats.ManualAck())

	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"subject": s.cfg.Subject,
		"durable": s.cfg.Durable,
	}).Info("Subscribed to action request events")

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	return nil
}
