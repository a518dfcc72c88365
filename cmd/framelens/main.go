// =============================================================================
// FrameLens 主入口
// =============================================================================
// 服务端与调用方共用的命令行入口
//
// 使用方法:
//
//	framelens serve --config config.yaml               # 启动服务
//	framelens analyze --image frame.png --category film  # 分析一帧
//	framelens report --frames frames.json --agent "Business Analyst"
//	framelens health --addr http://localhost:8080      # 健康检查
//	framelens version                                  # 显示版本信息
// =============================================================================

// @title FrameLens API
// @version 1.0.0
// @description FrameLens fans a captured frame out to many independently configured AI agents.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/framelens/client"
	"github.com/BaSui01/framelens/config"
	"github.com/BaSui01/framelens/internal/telemetry"
	"github.com/BaSui01/framelens/llm/providers/gemini"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "analyze":
		runAnalyze(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	// 凭据缺失时在监听端口之前退出
	loader := config.NewLoader().WithValidator(config.RequireAPIKey)
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, level := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting FrameLens",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	otelProviders, err := telemetry.Init(context.Background(), cfg.Telemetry, Version, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	provider, err := gemini.New(gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		BaseURL:    cfg.Gemini.BaseURL,
		APIVersion: cfg.Gemini.APIVersion,
		Model:      cfg.Dispatch.DefaultModel,
		Timeout:    cfg.Gemini.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create Gemini provider", zap.Error(err))
	}

	srv := NewServer(cfg, *configPath, logger, level, otelProviders, provider)
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	srv.WaitForShutdown()

	logger.Info("FrameLens stopped")
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", client.DefaultBaseURL, "Server address")
	fs.Parse(args)

	c, err := client.New(client.Config{BaseURL: *addr, Timeout: 5 * time.Second}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}

	status, err := c.Health(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(strings.ToUpper(status.Status))
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("FrameLens %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`FrameLens - multi-agent frame analysis

Usage:
  framelens <command> [options]

Commands:
  serve     Start the FrameLens server
  analyze   Send one frame to a set of catalog agents
  report    Build a report from analyzed frames
  version   Show version information
  health    Check server readiness
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Options for 'analyze':
  --image <path>          PNG or JPEG frame
  --agents <a,b>          Agent names or IDs from the catalog
  --category <name>       Use every agent of a catalog category
  --project <text>        Project prompt
  --media-name <text>     Media name
  --media-desc <text>     Media description
  --media-uuid <id>       Media UUID recorded in the output
  --timestamp <seconds>   Frame timestamp recorded in the output

Options for 'report':
  --frames <path>   JSON file with analyzed frames (output of analyze)
  --agent <name>    Report agent name or ID
  --project <text>  Project prompt

Examples:
  framelens serve --config /etc/framelens/config.yaml
  framelens analyze --image frame.png --category film > frame.json
  framelens report --frames frame.json --agent "Business Analyst"
  framelens health --addr http://localhost:8080
  framelens version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

// parseLevel 解析日志级别，无法识别时为 info
func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// initLogger 构建 logger，返回的 AtomicLevel 供配置热重载调整级别
func initLogger(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            level,
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger, level
}
