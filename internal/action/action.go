// Package action 实现 Data Product Action 的事件处理编排。
// 每个入站事件被同步地走完两段流水线：信封提取与实体装配，
// 装配出的方面批次按固定顺序逐条交给注入的持久化协作方。
// 处理前会检查存活 Worker 的状态，Worker 已退出时处理调用快速失败。
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/dataproduct"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/dedupe"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/envelope"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/metrics"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/worker"
	"github.com/sirupsen/logrus"
)

// AspectEmitter 定义动作所需的最小持久化能力（单条提案的同步提交）。
type AspectEmitter interface {
	Emit(ctx context.Context, record *domain.AspectRecord) error
}

// Config 定义动作配置。
type Config struct {
	// IDPrefix 是派生实体标识符时使用的前缀
	IDPrefix string
}

// Action 是事件处理编排器。
// 配置与协作方句柄在构造后只读，事件之间不保留任何状态。
type Action struct {
	cfg       Config
	extractor *envelope.Extractor
	emitter   AspectEmitter
	liveness  *worker.Worker
	guard     *dedupe.Guard
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// New 创建一个新的动作编排器。
// liveness、guard 和 m 均可为 nil，对应的检查会被跳过。
func New(cfg Config, emitter AspectEmitter, liveness *worker.Worker, guard *dedupe.Guard, m *metrics.Metrics, logger *logrus.Logger) *Action {
	return &Action{
		cfg:       cfg,
		extractor: envelope.NewExtractor(logger),
		emitter:   emitter,
		liveness:  liveness,
		guard:     guard,
		metrics:   m,
		logger:    logger,
	}
}

// Act 处理一个入站事件信封。
//
// 返回约定：
//   - nil: 事件被处理完毕（包括被静默跳过和载荷无法解析的情形）
//   - ErrWorkerNotRunning: 存活 Worker 已退出，进程处于退化状态，
//     该错误不可重试，调用方应当把它当作致命条件
//   - 其他错误: 方面提交被持久化协作方拒绝，原样传播
func (a *Action) Act(ctx context.Context, raw []byte) error {
	// 存活 Worker 退出后拒绝继续处理，而不是在退化的进程里静默工作
	if a.liveness != nil {
		if st := a.liveness.Status(); st != worker.StatusRunning {
			if err := a.liveness.Err(); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrWorkerNotRunning, err)
			}
			return fmt.Errorf("%w: status %s", domain.ErrWorkerNotRunning, st)
		}
	}

	bundle, err := a.extractor.Extract(raw)
	if err != nil {
		// 载荷无法解析：记录日志后丢弃该事件，不向调用方传播
		a.logger.WithError(err).Warn("Dropping malformed event")
		a.metrics.RecordEvent(metrics.OutcomeMalformed)
		return nil
	}
	if bundle == nil {
		// 不满足门控条件是最常见的情形，必须保持安静
		a.metrics.RecordEvent(metrics.OutcomeSkipped)
		return nil
	}

	if a.guard.Seen(ctx, bundle.ActionRequestURN) {
		a.logger.WithField("action_request", bundle.ActionRequestURN).
			Debug("Event already processed, skipping")
		a.metrics.RecordEvent(metrics.OutcomeDuplicate)
		return nil
	}

	records := dataproduct.Assemble(bundle, a.cfg.IDPrefix)

	// 逐条同步提交，保持批次的固定顺序；整批没有事务保证，
	// 中途失败会留下部分写入的实体，由上游重投或人工修复
	for i := range records {
		start := time.Now()
		if err := a.emitter.Emit(ctx, &records[i]); err != nil {
			a.metrics.RecordEvent(metrics.OutcomeFailed)
			return fmt.Errorf("emit %s for %s: %w", records[i].AspectName, records[i].EntityURN, err)
		}
		a.metrics.RecordAspect(records[i].AspectName, float64(time.Since(start).Milliseconds()))
	}

	a.guard.Mark(ctx, bundle.ActionRequestURN)
	a.metrics.RecordEvent(metrics.OutcomeEmitted)

	name, _ := bundle.Scalar(domain.FieldDataProductName)
	a.logger.WithFields(logrus.Fields{
		"urn":     records[0].EntityURN,
		"name":    name,
		"aspects": len(records),
	}).Info("Created data product")

	return nil
}
