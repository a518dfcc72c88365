// =============================================================================
// 📦 FrameLens 默认配置
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/framelens/llm"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Gemini:    DefaultGeminiConfig(),
		Dispatch:  DefaultDispatchConfig(),
		Image:     DefaultImageConfig(),
		Client:    DefaultClientConfig(),
		Catalog:   DefaultCatalogConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    3 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxBodyBytes:    50 << 20,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
	}
}

// DefaultGeminiConfig 返回默认 Gemini 配置
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		APIVersion: "v1beta",
	}
}

// DefaultDispatchConfig 返回默认分发配置
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		AgentTimeout: 2 * time.Minute,
		DefaultModel: llm.DefaultModel,
	}
}

// DefaultImageConfig 返回默认图像配置
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		MaxWidth:        640,
		CompactQuality:  70,
		PreserveQuality: 90,
		MaxPixels:       16383 * 16383,
	}
}

// DefaultClientConfig 返回默认调用方配置
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   "http://localhost:8080",
		Timeout:   3 * time.Minute,
		RetryMode: "once",
	}
}

// DefaultCatalogConfig 返回默认目录配置
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Categories: []string{"business", "web", "data", "film"},
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "framelens",
		SampleRate:   0.1,
	}
}
