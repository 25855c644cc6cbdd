// Package worker 实现保活用的后台存活 Worker。
// Worker 以固定间隔执行一次空操作心跳，唯一目的是让宿主进程保持存活，
// 并在自身意外退出时让事件处理路径快速失败。
// 状态通过原子枚举暴露，事件路径在每次处理前读取该状态。
package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
	"github.com/sirupsen/logrus"
)

// Status 表示 Worker 的运行状态。
type Status int32

// Worker 状态常量定义
const (
	// StatusIdle 表示 Worker 尚未启动
	StatusIdle Status = iota
	// StatusRunning 表示 Worker 正在运行
	StatusRunning
	// StatusStopped 表示 Worker 已被协作式停止
	StatusStopped
	// StatusCrashed 表示 Worker 因未预期的错误而崩溃
	StatusCrashed
)

// String 返回状态的可读名称。
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// MinInterval 是心跳间隔的下限。
const MinInterval = 100 * time.Millisecond

// StopTimeout 是关闭时等待 Worker 退出的上限时间。
const StopTimeout = 10 * time.Second

// Config 定义 Worker 配置。
type Config struct {
	// Name 是 Worker 的标签，用于日志标识
	Name string
	// Interval 是心跳间隔，低于下限时被抬升到下限
	Interval time.Duration
	// OnHeartbeat 是每次心跳时调用的可选回调（用于指标上报）
	OnHeartbeat func()
}

// Worker 是受监督的存活 Worker。
// 心跳协程与事件路径之间仅共享原子状态和崩溃原因，没有其他可变状态。
type Worker struct {
	name        string
	interval    time.Duration
	onHeartbeat func()
	logger      *logrus.Logger

	status atomic.Int32
	stopCh chan struct{}
	doneCh chan struct{}

	mu  sync.Mutex
	err error

	startOnce sync.Once
	stopOnce  sync.Once
}

// New 创建一个新的存活 Worker（尚未启动）。
func New(cfg Config, logger *logrus.Logger) *Worker {
	if cfg.Name == "" {
		cfg.Name = "dataproduct-worker"
	}
	if cfg.Interval < MinInterval {
		cfg.Interval = MinInterval
	}
	return &Worker{
		name:        cfg.Name,
		interval:    cfg.Interval,
		onHeartbeat: cfg.OnHeartbeat,
		logger:      logger,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start 启动心跳协程。重复调用只会启动一次。
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		w.status.Store(int32(StatusRunning))
		go w.run()
		w.logger.WithFields(logrus.Fields{
			"worker":   w.name,
			"interval": w.interval,
		}).Info("Liveness worker started")
	})
}

// run 是心跳循环。panic 会被捕获并记录为崩溃状态，
// 而不是让整个进程静默退化。
func (w *Worker) run() {
	defer close(w.doneCh)
	defer func() {
		if r := recover(); r != nil {
			w.recordCrash(r)
		}
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			w.status.Store(int32(StatusStopped))
			w.logger.WithField("worker", w.name).Info("Liveness worker stopped")
			return
		case <-ticker.C:
			// 心跳本身是空操作，只记录 debug 日志并上报指标
			w.logger.WithField("worker", w.name).Debug("Liveness heartbeat")
			if w.onHeartbeat != nil {
				w.onHeartbeat()
			}
		}
	}
}

// recordCrash 记录崩溃状态和原因。
// 原因统一包装为 ErrWorkerCrashed，便于调用方用 errors.Is 判断。
func (w *Worker) recordCrash(reason interface{}) {
	w.mu.Lock()
	w.err = fmt.Errorf("%w: %v", domain.ErrWorkerCrashed, reason)
	w.mu.Unlock()

	w.status.Store(int32(StatusCrashed))
	w.logger.WithFields(logrus.Fields{
		"worker": w.name,
		"reason": reason,
	}).Error("Liveness worker crashed")
}

// Status 返回 Worker 的当前状态。
func (w *Worker) Status() Status {
	return Status(w.status.Load())
}

// Err 返回导致 Worker 崩溃的原因（未崩溃时为 nil）。
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Done 返回在 Worker 退出（停止或崩溃）时被关闭的通道。
// 守护进程可以监听该通道以便在 Worker 崩溃时立刻退出。
func (w *Worker) Done() <-chan struct{} {
	return w.doneCh
}

// Stop 发出协作式停止信号并等待 Worker 退出。
// 等待时间有上限（StopTimeout），超时后直接返回而不是无限阻塞，
// 不配合的后台任务不应拖住进程关闭。
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})

	select {
	case <-w.doneCh:
	case <-time.After(StopTimeout):
		w.logger.WithField("worker", w.name).Warn("Liveness worker did not stop in time")
	}
}
