package main

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"image/color"
	"image/png"
	"net/http"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/framelens/api/handlers"
	"github.com/BaSui01/framelens/config"
	"github.com/BaSui01/framelens/internal/metrics"
	"github.com/BaSui01/framelens/internal/server"
	"github.com/BaSui01/framelens/internal/telemetry"
	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/llm/dispatch"
	"github.com/BaSui01/framelens/llm/image"
	"github.com/BaSui01/framelens/llm/observability"
)

// metricsNamespace 是 Prometheus 指标前缀
const metricsNamespace = "framelens"

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 FrameLens 的主服务器
type Server struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	level      zap.AtomicLevel

	otel     *telemetry.Providers
	provider llm.Provider

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// Handlers
	healthHandler *handlers.HealthHandler
	geminiHandler *handlers.GeminiHandler

	// 指标收集器
	metricsCollector *metrics.Collector

	// 配置热重载
	watcher *config.Watcher

	// 后台 goroutine（限流清理、配置轮询）生命周期
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, configPath string, logger *zap.Logger, level zap.AtomicLevel, otelProviders *telemetry.Providers, provider llm.Provider) *Server {
	return &Server{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		level:      level,
		otel:       otelProviders,
		provider:   provider,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// 1. 初始化指标收集器
	s.metricsCollector = metrics.NewCollector(metricsNamespace, s.logger)

	// 2. 初始化 Handlers
	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	// 3. 配置热重载
	if err := s.initWatcher(ctx); err != nil {
		return fmt.Errorf("failed to init config watcher: %w", err)
	}

	// 4. 启动 HTTP 服务器
	if err := s.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 5. 启动 Metrics 服务器
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("hot_reload_enabled", s.watcher != nil),
	)
	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initHandlers 组装 归一化 → 分发 → Handler 链路
func (s *Server) initHandlers() error {
	normalizer := image.NewNormalizer(image.Config{
		MaxWidth:        s.cfg.Image.MaxWidth,
		CompactQuality:  s.cfg.Image.CompactQuality,
		PreserveQuality: s.cfg.Image.PreserveQuality,
		MaxConcurrency:  s.cfg.Image.MaxConcurrency,
		MaxPixels:       s.cfg.Image.MaxPixels,
	}, s.logger).WithObserver(s.metricsCollector)

	opts := []dispatch.Option{dispatch.WithRecorder(s.metricsCollector)}
	if s.otel.Enabled() {
		obs, err := observability.NewMetrics()
		if err != nil {
			return fmt.Errorf("create dispatch observability: %w", err)
		}
		opts = append(opts, dispatch.WithObservability(obs))
	}

	dispatcher := dispatch.New(s.provider, normalizer, dispatch.Config{
		AgentTimeout: s.cfg.Dispatch.AgentTimeout,
		DefaultModel: s.cfg.Dispatch.DefaultModel,
	}, s.logger, opts...)

	s.geminiHandler = handlers.NewGeminiHandler(dispatcher, s.cfg.Server.MaxBodyBytes, s.logger)

	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewFuncCheck("image_codec", codecCheck(normalizer)))

	s.logger.Info("Handlers initialized",
		zap.String("provider", s.provider.Name()),
		zap.Duration("agent_timeout", s.cfg.Dispatch.AgentTimeout),
	)
	return nil
}

// codecCheck 用一张探针图验证转码链路可用
func codecCheck(normalizer *image.Normalizer) func(ctx context.Context) error {
	probe := probePNG()
	return func(ctx context.Context) error {
		_, err := normalizer.Normalize(ctx, probe, image.Compact)
		return err
	}
}

func probePNG() []byte {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// initWatcher 有配置文件时启动轮询，日志级别即时生效
func (s *Server) initWatcher(ctx context.Context) error {
	if s.configPath == "" {
		return nil
	}

	loader := config.NewLoader().WithConfigPath(s.configPath).WithValidator(config.RequireAPIKey)
	w, err := config.NewWatcher(loader, s.cfg, config.WithWatcherLogger(s.logger))
	if err != nil {
		return err
	}
	w.OnReload(s.onConfigReload)
	s.watcher = w

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.Run(ctx)
	}()
	return nil
}

// onConfigReload 应用可热更新的配置项，其余变更需重启
func (s *Server) onConfigReload(oldCfg, newCfg *config.Config) {
	if oldCfg.Log.Level != newCfg.Log.Level {
		s.level.SetLevel(parseLevel(newCfg.Log.Level))
		s.logger.Info("Log level updated", zap.String("level", newCfg.Log.Level))
	}
	if !reflect.DeepEqual(oldCfg.Server, newCfg.Server) ||
		oldCfg.Gemini != newCfg.Gemini ||
		oldCfg.Dispatch != newCfg.Dispatch ||
		oldCfg.Image != newCfg.Image {
		s.logger.Warn("Configuration changed; restart required to apply server, provider, dispatch or image settings")
	}
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// routes 注册 API 与健康检查路由
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	s.geminiHandler.Register(mux)
	return mux
}

// handler 构建带中间件链的 API handler
func (s *Server) handler(ctx context.Context) http.Handler {
	return Chain(s.routes(),
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.metricsCollector, s.logger),
	)
}

// startHTTPServer 启动 API 服务器
func (s *Server) startHTTPServer(ctx context.Context) error {
	s.httpManager = server.NewManager(s.handler(ctx), server.Config{
		Name:            "api",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
		TLSCertFile:     s.cfg.Server.TLSCertFile,
		TLSKeyFile:      s.cfg.Server.TLSKeyFile,
	}, s.logger)

	return s.httpManager.Start()
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 启动 Metrics 服务器，端口为 0 时不启动
func (s *Server) startMetricsServer() error {
	if s.cfg.Server.MetricsPort == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	s.metricsManager = server.NewManager(mux, server.Config{
		Name:            "metrics",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.ReadTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	return s.metricsManager.Start()
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	// 1. 停止限流清理与配置轮询
	if s.cancel != nil {
		s.cancel()
	}

	// 2. 关闭 HTTP 服务器
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 3. 关闭 Metrics 服务器
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 4. 等待后台 goroutine
	s.wg.Wait()

	// 5. 刷新遥测数据
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.otel.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Telemetry shutdown error", zap.Error(err))
	}

	s.logger.Info("Graceful shutdown completed")
}
