package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BaSui01/framelens/llm/conversation"
	"github.com/BaSui01/framelens/types"
)

// MessageHistoryMessage 是 messageHistory 形状不合法时的统一提示.
const MessageHistoryMessage = "messageHistory must be an array of { role, content } objects."

// BatchRequiredMessage 是批量请求缺少必填字段时的提示.
const BatchRequiredMessage = "imageData and agentPrompts (array of { agentId, systemPrompt, messageHistory, model }) are required."

// ImageRequiredMessage 是单图请求缺少必填字段时的提示.
const ImageRequiredMessage = "Both prompt and imageData (base64) are required."

// =============================================================================
// 响应信封
// =============================================================================

// Response 统一 API 响应结构.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RawResponse 是客户端侧解码用的信封，Data 延迟解析.
type RawResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Code      string          `json:"code,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// =============================================================================
// 批量分析
// =============================================================================

// AgentPrompt 是批量请求中的单个 Agent 配置.
type AgentPrompt struct {
	AgentID        string          `json:"agentId"`
	SystemPrompt   string          `json:"systemPrompt,omitempty"`
	MessageHistory json.RawMessage `json:"messageHistory,omitempty"`
	Model          string          `json:"model,omitempty"`
}

// Spec 转换为 AgentSpec，messageHistory 缺失时视为空.
func (p AgentPrompt) Spec() (types.AgentSpec, error) {
	history, err := ParseHistory(p.MessageHistory, true)
	if err != nil {
		return types.AgentSpec{}, err
	}
	return types.AgentSpec{
		AgentID:        p.AgentID,
		SystemPrompt:   p.SystemPrompt,
		MessageHistory: history,
		Model:          p.Model,
	}, nil
}

// NewAgentPrompt 从 AgentSpec 构建请求项.
func NewAgentPrompt(spec types.AgentSpec) AgentPrompt {
	history := spec.MessageHistory
	if history == nil {
		history = []types.ConversationTurn{}
	}
	raw, _ := json.Marshal(history)
	return AgentPrompt{
		AgentID:        spec.AgentID,
		SystemPrompt:   spec.SystemPrompt,
		MessageHistory: raw,
		Model:          spec.Model,
	}
}

// BatchImagesRequest 是 POST /api/gemini/batch-images 的请求体.
type BatchImagesRequest struct {
	ImageData    string        `json:"imageData"`
	AgentPrompts []AgentPrompt `json:"agentPrompts"`
}

// Specs 校验必填字段并转换全部 Agent 配置.
func (r *BatchImagesRequest) Specs() ([]types.AgentSpec, error) {
	if r.ImageData == "" || len(r.AgentPrompts) == 0 {
		return nil, types.NewValidationError(BatchRequiredMessage)
	}
	specs := make([]types.AgentSpec, len(r.AgentPrompts))
	for i, p := range r.AgentPrompts {
		spec, err := p.Spec()
		if err != nil {
			return nil, types.NewValidationError(fmt.Sprintf("agentPrompts[%d]: %s", i, types.ErrorMessage(err)))
		}
		specs[i] = spec
	}
	return specs, nil
}

// =============================================================================
// 单图分析
// =============================================================================

// ImagesRequest 是 POST /api/gemini/images 的请求体.
type ImagesRequest struct {
	Prompt    string `json:"prompt"`
	ImageData string `json:"imageData"`
	Model     string `json:"model,omitempty"`
}

// ImageResult 是单图分析的 data 字段，image 为 base64 JPEG.
type ImageResult struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// =============================================================================
// 文本生成
// =============================================================================

// TextRequest 是 POST /api/gemini/text 的请求体.
// prompt 非空时按旧版单条提示词处理，否则使用 systemPrompt + messageHistory.
type TextRequest struct {
	Prompt         string          `json:"prompt,omitempty"`
	SystemPrompt   string          `json:"systemPrompt,omitempty"`
	MessageHistory json.RawMessage `json:"messageHistory,omitempty"`
	Model          string          `json:"model,omitempty"`
}

// ToPrompt 将请求体转换为 conversation.Prompt.
func (r *TextRequest) ToPrompt() (conversation.Prompt, error) {
	if r.Prompt != "" {
		return conversation.FlatPrompt{Text: r.Prompt}, nil
	}
	history, err := ParseHistory(r.MessageHistory, false)
	if err != nil {
		return nil, err
	}
	return conversation.StructuredPrompt{SystemPrompt: r.SystemPrompt, MessageHistory: history}, nil
}

// NewTextRequest 从 conversation.Prompt 构建请求体.
func NewTextRequest(p conversation.Prompt, model string) (*TextRequest, error) {
	switch v := p.(type) {
	case conversation.FlatPrompt:
		return &TextRequest{Prompt: v.Text, Model: model}, nil
	case conversation.StructuredPrompt:
		history := v.MessageHistory
		if history == nil {
			history = []types.ConversationTurn{}
		}
		raw, err := json.Marshal(history)
		if err != nil {
			return nil, err
		}
		return &TextRequest{SystemPrompt: v.SystemPrompt, MessageHistory: raw, Model: model}, nil
	default:
		return nil, types.NewValidationError("prompt is required")
	}
}

// TextResult 是文本生成的 data 字段.
type TextResult struct {
	Text string `json:"text"`
}

// =============================================================================
// 历史解析
// =============================================================================

// ParseHistory 解析 messageHistory.
// 值必须是 {role, content} 对象数组；allowMissing 为 true 时缺失或 null 视为空历史.
func ParseHistory(raw json.RawMessage, allowMissing bool) ([]types.ConversationTurn, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if allowMissing {
			return []types.ConversationTurn{}, nil
		}
		return nil, types.NewValidationError(MessageHistoryMessage)
	}
	if trimmed[0] != '[' {
		return nil, types.NewValidationError(MessageHistoryMessage)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, types.NewValidationError(MessageHistoryMessage).WithCause(err)
	}
	turns := make([]types.ConversationTurn, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, types.NewValidationError(MessageHistoryMessage)
		}
		var turn struct {
			Role    *string `json:"role"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(item, &turn); err != nil || turn.Role == nil || turn.Content == nil {
			return nil, types.NewValidationError(MessageHistoryMessage).WithCause(err)
		}
		turns[i] = types.ConversationTurn{Role: types.Role(*turn.Role), Content: *turn.Content}
	}
	if err := types.ValidateTurns(turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// =============================================================================
// 健康与版本
// =============================================================================

// HealthStatus 是健康检查响应.
type HealthStatus struct {
	Status    string                 `json:"status"` // "healthy", "unhealthy"
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult 是单项检查结果.
type CheckResult struct {
	Status  string `json:"status"` // "pass", "fail"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// VersionInfo 是 /version 响应.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}
