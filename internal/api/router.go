// Package api 提供了 Data Product Action 插件的管理 HTTP API。
// 管理 API 只暴露健康检查、就绪探针和运行状态端点，
// 不对外提供任何业务操作——事件处理完全由事件管道驱动。
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/auth"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/telemetry"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RouterConfig 路由器配置选项
type RouterConfig struct {
	// Worker 存活 Worker，就绪探针根据它的状态回答
	Worker *worker.Worker
	// ServiceName 服务名称，用于追踪标识
	ServiceName string
	// AdminToken 管理令牌，非空时 /status 端点要求 Bearer 认证
	AdminToken string
	// Logger 日志记录器
	Logger *logrus.Logger
}

// NewRouter 创建并配置管理 HTTP 路由器。
//
// 路由结构：
//
//	/health        - 基本健康检查
//	/health/live   - Kubernetes 存活探针
//	/health/ready  - Kubernetes 就绪探针（Worker 未运行时返回 503）
//	/status        - 运行状态 JSON（配置了管理令牌时需要 Bearer 认证）
func NewRouter(cfg *RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// 遥测中间件：记录 HTTP 请求的追踪信息
	r.Use(telemetry.HTTPMiddleware(cfg.ServiceName))
	// RequestID 中间件：为每个请求生成唯一 ID，便于日志追踪
	r.Use(middleware.RequestID)
	// RealIP 中间件：从 X-Forwarded-For 等头部获取真实客户端 IP
	r.Use(middleware.RealIP)
	// Recoverer 中间件：捕获 panic 并返回 500
	r.Use(middleware.Recoverer)

	startedAt := time.Now()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("alive"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		// 存活 Worker 退出后进程处于退化状态，不再接受流量
		if cfg.Worker != nil && cfg.Worker.Status() != worker.StatusRunning {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("liveness worker is not running"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// 状态端点携带崩溃原因等内部信息，配置了管理令牌时要求认证；
	// 探针端点始终匿名可达，否则 Kubernetes 无法使用它们
	adminAuth := auth.NewMiddleware(cfg.AdminToken)
	r.Group(func(r chi.Router) {
		r.Use(adminAuth.Authenticate)
		r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
			status := map[string]interface{}{
				"uptime_seconds": int64(time.Since(startedAt).Seconds()),
			}
			if cfg.Worker != nil {
				status["worker"] = cfg.Worker.Status().String()
				if err := cfg.Worker.Err(); err != nil {
					status["worker_error"] = err.Error()
				}
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(status); err != nil {
				cfg.Logger.WithError(err).Error("Failed to encode status response")
			}
		})
	})

	return r
}
