package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/framelens/api"
	"github.com/BaSui01/framelens/internal/tlsutil"
	"github.com/BaSui01/framelens/llm/conversation"
	"github.com/BaSui01/framelens/llm/retry"
	"github.com/BaSui01/framelens/types"
	"go.uber.org/zap"
)

// 默认值
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 3 * time.Minute
)

// maxResponseBytes 限制读取的响应体大小.
const maxResponseBytes = 64 << 20

// Config 客户端配置
type Config struct {
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RetryMode  string        `yaml:"retry_mode" env:"RETRY_MODE"`
	HTTPClient *http.Client  `yaml:"-"`
}

// Client 调用 FrameLens HTTP API，可并发使用
type Client struct {
	baseURL string
	http    *http.Client
	policy  *retry.Policy
	logger  *zap.Logger
}

// New 创建 Client.
// RetryMode 为空时使用 once，无法识别时返回 ValidationError.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "client"))

	policy, err := retry.ParseMode(cfg.RetryMode)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = tlsutil.SecureHTTPClient(timeout)
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		policy:  policy.WithLogger(logger),
		logger:  logger,
	}, nil
}

// =============================================================================
// 🎯 分析调用
// =============================================================================

// AnalyzeFrame 将一帧（数据 URI）交给 specs 中的全部 Agent 分析.
// 返回的结果与 specs 顺序一致，单个 Agent 的失败体现在其结果中.
func (c *Client) AnalyzeFrame(ctx context.Context, imageDataURI string, specs []types.AgentSpec) (types.BatchResult, error) {
	prompts := make([]api.AgentPrompt, len(specs))
	for i, spec := range specs {
		prompts[i] = api.NewAgentPrompt(spec)
	}
	body := api.BatchImagesRequest{ImageData: imageDataURI, AgentPrompts: prompts}

	return retry.Do(ctx, c.policy, func(ctx context.Context) (types.BatchResult, error) {
		var out types.BatchResult
		if err := c.post(ctx, "/api/gemini/batch-images", body, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// AnalyzeImage 以单条提示词分析一帧.
func (c *Client) AnalyzeImage(ctx context.Context, imageDataURI, prompt, model string) (*api.ImageResult, error) {
	body := api.ImagesRequest{Prompt: prompt, ImageData: imageDataURI, Model: model}

	return retry.Do(ctx, c.policy, func(ctx context.Context) (*api.ImageResult, error) {
		var out api.ImageResult
		if err := c.post(ctx, "/api/gemini/images", body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// GenerateText 发送单条提示词或结构化对话并返回生成的文本.
func (c *Client) GenerateText(ctx context.Context, p conversation.Prompt, model string) (string, error) {
	body, err := api.NewTextRequest(p, model)
	if err != nil {
		return "", err
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		var out api.TextResult
		if err := c.post(ctx, "/api/gemini/text", body, &out); err != nil {
			return "", err
		}
		return out.Text, nil
	})
}

// Health 查询 /ready，不重试.
func (c *Client) Health(ctx context.Context) (*api.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ready", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	var status api.HealthStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode health status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &status, types.NewError(types.ErrInternalError, "service is "+status.Status).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(true)
	}
	return &status, nil
}

// =============================================================================
// 🔧 传输
// =============================================================================

// post 发起一次请求并解析信封，data 写入 out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if reqID, ok := types.RequestID(ctx); ok {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(err)
	}

	var envelope api.RawResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return types.NewError(types.ErrInternalError, fmt.Sprintf("unexpected response (HTTP %d)", resp.StatusCode)).
			WithCause(err).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode >= http.StatusInternalServerError)
	}

	c.logger.Debug("request completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Bool("success", envelope.Success),
		zap.Duration("duration", time.Since(start)),
	)

	if !envelope.Success {
		return envelopeError(resp.StatusCode, envelope)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// envelopeError 将 success:false 信封还原为 *types.Error.
func envelopeError(status int, envelope api.RawResponse) *types.Error {
	code := types.ErrorCode(envelope.Code)
	if code == "" {
		code = types.ErrInternalError
	}
	message := envelope.Error
	if message == "" {
		message = "Internal server error"
	}
	return types.NewError(code, message).
		WithHTTPStatus(status).
		WithRetryable(status == http.StatusTooManyRequests || status >= http.StatusInternalServerError)
}

func transportError(err error) *types.Error {
	return types.NewError(types.ErrInternalError, "request failed: "+err.Error()).
		WithCause(err).
		WithRetryable(true)
}
