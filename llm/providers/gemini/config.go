package gemini

import (
	"net/http"
	"time"
)

// Config 配置 Gemini Provider.
type Config struct {
	APIKey     string        `json:"api_key" yaml:"api_key"`
	BaseURL    string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIVersion string        `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Model      string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// HTTPClient 覆盖底层 HTTP 客户端，测试时使用.
	HTTPClient *http.Client `json:"-" yaml:"-"`
}
