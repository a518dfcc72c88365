package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/types"
)

const providerName = "gemini"

// Provider 实现 llm.Provider.
// genai.Client 在首次调用时创建，之后并发共享.
type Provider struct {
	cfg    Config
	logger *zap.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

// New 创建 Gemini Provider.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.NewConfigError("Missing Gemini API key: set FRAMELENS_GEMINI_API_KEY or GOOGLE_API_KEY").
			WithProvider(providerName)
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "gemini_provider")),
	}, nil
}

// Name 返回 "gemini".
func (p *Provider) Name() string { return providerName }

// DefaultModel 返回未指定模型时使用的模型.
func (p *Provider) DefaultModel() string { return p.cfg.Model }

func (p *Provider) genaiClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:     p.cfg.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: p.cfg.HTTPClient,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    p.cfg.BaseURL,
				APIVersion: p.cfg.APIVersion,
			},
		}
		if p.cfg.Timeout > 0 {
			timeout := p.cfg.Timeout
			cc.HTTPOptions.Timeout = &timeout
		}
		p.client, p.initErr = genai.NewClient(ctx, cc)
		if p.initErr != nil {
			p.logger.Error("failed to create genai client", zap.Error(p.initErr))
		}
	})
	return p.client, p.initErr
}

// Invoke 发起一次 generateContent 调用.
func (p *Provider) Invoke(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, types.NewValidationError("request is required")
	}
	client, err := p.genaiClient(ctx)
	if err != nil {
		return nil, types.NewProviderError(providerName, "failed to create Gemini client", err)
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	start := time.Now()
	result, err := client.Models.GenerateContent(ctx, model, toContents(req.Conversation), p.generateConfig(req.SystemPrompt))
	if err != nil {
		p.logger.Warn("generateContent failed",
			zap.String("model", model),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, mapError(err)
	}

	resp, err := parseResponse(result)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("generateContent completed",
		zap.String("model", model),
		zap.Int("text_len", len(resp.Text)),
		zap.Bool("has_image", resp.Image != nil),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

func (p *Provider) generateConfig(systemPrompt string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SafetySettings: SafetySettings(),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)},
		}
	}
	return cfg
}

// SafetySettings 返回固定的安全设置，每次调用返回新切片.
func SafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryCivicIntegrity,
	}
	out := make([]*genai.SafetySetting, len(categories))
	for i, c := range categories {
		out[i] = &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		}
	}
	return out
}

func toContents(conv llm.Conversation) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conv))
	for _, turn := range conv {
		var part *genai.Part
		if turn.Image != nil {
			mime := turn.Image.MIMEType
			if mime == "" {
				mime = types.MIMEJPEG
			}
			part = genai.NewPartFromBytes(turn.Image.Data, mime)
		} else {
			part = genai.NewPartFromText(turn.Text)
		}
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.Role(turn.Role)))
	}
	return contents
}

// parseResponse 取第一个候选，拼接文本并捕获第一张图像.
func parseResponse(result *genai.GenerateContentResponse) (*llm.Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, types.NewProviderError(providerName, "Gemini returned no candidates", nil)
	}
	cand := result.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil, types.NewProviderError(providerName, "Gemini returned an empty candidate", nil)
	}

	var sb strings.Builder
	resp := &llm.Response{}
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
		if part.InlineData != nil && resp.Image == nil && len(part.InlineData.Data) > 0 {
			resp.Image = part.InlineData.Data
			resp.ImageMIMEType = part.InlineData.MIMEType
		}
	}
	resp.Text = sb.String()
	return resp, nil
}

// mapError 将 genai 错误转换为 PROVIDER_ERROR，保留上游消息.
// 只有 429 与 5xx 标记为可重试.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		retryable := apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
		return types.NewProviderError(providerName, msg, err).WithRetryable(retryable)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewTimeoutError("Gemini request timed out").WithCause(err).WithProvider(providerName)
	}
	return types.NewProviderError(providerName, err.Error(), err)
}
