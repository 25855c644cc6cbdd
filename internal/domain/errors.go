// Package domain 定义了 Data Product Action 插件的核心领域模型。
package domain

import "errors"

// 领域错误定义
// 这些错误用于在应用程序的不同层之间传递业务逻辑相关的错误信息。

var (
	// ========== 信封解析相关错误 ==========

	// ErrMalformedEnvelope 表示事件信封不是合法的 JSON
	ErrMalformedEnvelope = errors.New("malformed event envelope")
	// ErrMalformedFields 表示参数块中的 fields 字符串不是合法的 JSON 对象
	ErrMalformedFields = errors.New("malformed form fields payload")

	// ========== 后台 Worker 相关错误 ==========

	// ErrWorkerNotRunning 表示存活 Worker 已经停止或尚未启动，
	// 此时进程处于退化状态，事件处理必须快速失败而不是静默继续
	ErrWorkerNotRunning = errors.New("liveness worker is not running")
	// ErrWorkerCrashed 表示存活 Worker 因未预期的错误而崩溃
	ErrWorkerCrashed = errors.New("liveness worker crashed")

	// ========== 发射相关错误 ==========

	// ErrEmitRejected 表示元数据服务拒绝了一条变更提案
	ErrEmitRejected = errors.New("metadata service rejected the proposal")
)
