// Package worker 实现保活用的后台存活 Worker。
package worker

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/domain"
	"github.com/sirupsen/logrus"
)

// newTestLogger 创建一个输出被丢弃的日志记录器。
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestWorker_Lifecycle 测试 Worker 的启动、心跳和协作式停止。
func TestWorker_Lifecycle(t *testing.T) {
	beats := make(chan struct{}, 16)
	w := New(Config{
		Name:     "test-worker",
		Interval: MinInterval,
		OnHeartbeat: func() {
			select {
			case beats <- struct{}{}:
			default:
			}
		},
	}, newTestLogger())

	if w.Status() != StatusIdle {
		t.Fatalf("status before start = %s, want idle", w.Status())
	}

	w.Start()
	if w.Status() != StatusRunning {
		t.Fatalf("status after start = %s, want running", w.Status())
	}

	// 至少观察到一次心跳
	select {
	case <-beats:
	case <-time.After(2 * time.Second):
		t.Fatal("no heartbeat observed")
	}

	w.Stop()
	if w.Status() != StatusStopped {
		t.Errorf("status after stop = %s, want stopped", w.Status())
	}
	if w.Err() != nil {
		t.Errorf("stopped worker reports error: %v", w.Err())
	}

	// Done 通道在退出后必须已关闭
	select {
	case <-w.Done():
	default:
		t.Error("Done channel is not closed after stop")
	}
}

// TestWorker_IntervalFloor 测试过小的心跳间隔被抬升到下限。
func TestWorker_IntervalFloor(t *testing.T) {
	w := New(Config{Interval: time.Millisecond}, newTestLogger())
	if w.interval != MinInterval {
		t.Errorf("interval = %v, want floor %v", w.interval, MinInterval)
	}
}

// TestWorker_Crash 测试心跳协程 panic 后 Worker 进入崩溃状态并记录原因。
func TestWorker_Crash(t *testing.T) {
	w := New(Config{
		Interval: MinInterval,
		OnHeartbeat: func() {
			panic("heartbeat exploded")
		},
	}, newTestLogger())
	w.Start()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not crash in time")
	}

	if w.Status() != StatusCrashed {
		t.Fatalf("status after crash = %s, want crashed", w.Status())
	}
	if !errors.Is(w.Err(), domain.ErrWorkerCrashed) {
		t.Errorf("crash reason = %v, want ErrWorkerCrashed", w.Err())
	}

	// 崩溃后的 Stop 不应阻塞
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Stop blocked on a crashed worker")
	}
}

// TestStatus_String 测试状态枚举的可读名称。
func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status // 状态值
		want   string // 期望的名称
	}{
		{StatusIdle, "idle"},
		{StatusRunning, "running"},
		{StatusStopped, "stopped"},
		{StatusCrashed, "crashed"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
