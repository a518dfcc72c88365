package dispatch

import (
	"time"

	"github.com/BaSui01/framelens/llm"
)

// Config 配置 Dispatcher.
type Config struct {
	// AgentTimeout 限制单个 Agent 调用的时长，0 表示不限制.
	AgentTimeout time.Duration `json:"agent_timeout" yaml:"agent_timeout"`
	// DefaultModel 是 AgentSpec 未指定模型时使用的模型.
	DefaultModel string `json:"default_model" yaml:"default_model"`
}

// DefaultConfig 返回默认配置.
func DefaultConfig() Config {
	return Config{
		AgentTimeout: 2 * time.Minute,
		DefaultModel: llm.DefaultModel,
	}
}
