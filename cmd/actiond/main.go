// Package main 是 Data Product Action 守护进程的入口点。
// 守护进程订阅宿主事件管道投递的动作请求信封，把满足条件的工作流
// 表单事件转换为数据产品实体的元数据变更提案并提交给元数据服务。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/action"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/api"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/config"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/dedupe"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/emitter"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/events"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/metrics"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/telemetry"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// main 把实际工作交给 run，保证 defer 的清理逻辑在进程退出前全部执行。
func main() {
	if code := run(); code != 0 {
		os.Exit(code)
	}
}

// run 负责初始化所有依赖组件并驱动事件订阅，返回进程退出码。
func run() int {
	// 解析命令行参数，获取配置文件路径
	configPath := flag.String("config", "/etc/datahub-action/config.yaml", "Path to config file")
	flag.Parse()

	// 设置日志记录器
	// 使用 JSON 格式输出日志，便于日志收集和分析
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	if cfg.Logging.Level == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.WithField("worker", cfg.Action.WorkerName).Info("Starting Data Product Action")

	// 初始化遥测系统 (OpenTelemetry)
	// 遥测初始化失败不影响主服务运行，仅记录警告
	if cfg.Telemetry.Enabled {
		tel, err := telemetry.New(context.Background(), cfg.Telemetry)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize telemetry, continuing without tracing")
		} else {
			defer tel.Shutdown(context.Background())
			logger.AddHook(telemetry.NewLogrusHook())
			logger.WithField("endpoint", cfg.Telemetry.Endpoint).Info("Telemetry initialized")
		}
	}

	// 初始化 Prometheus 指标收集器
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	// 初始化幂等防护（可选）
	// Redis 不可用时直接启动失败，而不是带着半残的防护运行
	var guard *dedupe.Guard
	if cfg.Dedupe.Enabled {
		guard, err = dedupe.New(cfg.Dedupe, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer guard.Close()
		logger.WithField("address", cfg.Dedupe.Address).Info("Dedupe guard enabled")
	}

	// 启动存活 Worker
	// Worker 以固定间隔心跳；它退出后所有后续处理调用都会快速失败
	liveness := worker.New(worker.Config{
		Name:     cfg.Action.WorkerName,
		Interval: cfg.Action.WorkerInterval(),
		OnHeartbeat: func() {
			m.RecordHeartbeat()
		},
	}, logger)
	liveness.Start()
	m.SetWorkerUp(true)
	defer liveness.Stop()

	// 初始化元数据服务客户端和动作编排器
	gms := emitter.New(cfg.Emitter)
	act := action.New(action.Config{IDPrefix: cfg.Action.IDPrefix}, gms, liveness, guard, m, logger)

	// 连接事件管道并订阅动作请求信封
	source, err := events.NewSource(cfg.Events, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to event pipeline")
	}
	defer source.Close()

	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()

	if err := source.Subscribe(subCtx, func(ctx context.Context, raw []byte) error {
		ctx, span := telemetry.StartSpan(ctx, "action.act")
		defer span.End()
		err := act.Act(ctx, raw)
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		return err
	}); err != nil {
		logger.WithError(err).Fatal("Failed to subscribe to action request events")
	}

	// 启动管理 HTTP 服务器（健康检查、就绪探针、运行状态）
	router := api.NewRouter(&api.RouterConfig{
		Worker:      liveness,
		ServiceName: cfg.Telemetry.ServiceName,
		AdminToken:  cfg.Server.AdminToken,
		Logger:      logger,
	})
	adminServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.AdminPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.WithField("port", cfg.Server.AdminPort).Info("Starting admin server")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Admin server failed")
		}
	}()

	// 如果指标端口与管理端口不同，单独启动指标服务器
	var metricsServer *http.Server
	if cfg.Metrics.Enabled && cfg.Server.MetricsPort != cfg.Server.AdminPort {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.WithField("port", cfg.Server.MetricsPort).Info("Starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Fatal("Metrics server failed")
			}
		}()
	}

	// 等待关闭信号或存活 Worker 退出
	// 监听 SIGINT (Ctrl+C) 和 SIGTERM (容器停止) 信号；
	// keep_process_alive 关闭时 Worker 不承担保活职责，进程仅由信号驱动退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	if cfg.Action.KeepAlive() {
		select {
		case <-quit:
			logger.Info("Shutdown signal received")
		case <-liveness.Done():
			// Worker 崩溃意味着进程已经退化，立刻退出让编排器重启
			m.SetWorkerUp(false)
			logger.WithError(liveness.Err()).Error("Liveness worker exited unexpectedly")
			exitCode = 1
		}
	} else {
		<-quit
		logger.Info("Shutdown signal received")
	}

	logger.Info("Shutting down...")

	// 停止事件订阅，避免关闭过程中继续接收新事件
	subCancel()

	// 协作式停止存活 Worker（有上限地等待退出）
	liveness.Stop()
	m.SetWorkerUp(false)

	// 创建带超时的上下文用于优雅关闭 HTTP 服务器
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := adminServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Admin server shutdown error")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Metrics server shutdown error")
		}
	}

	logger.Info("Stopped")
	return exitCode
}
