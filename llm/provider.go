package llm

import (
	"context"

	"github.com/BaSui01/framelens/types"
)

// DefaultModel 是未指定模型时使用的生成模型.
const DefaultModel = "gemini-1.5-flash"

// Turn 是发送给 Provider 的一轮对话.
// 文本轮次只有 Text；帧图像轮次只有 Image，角色恒为 user.
type Turn struct {
	Role  types.Role
	Text  string
	Image *types.ImageAsset
}

// Conversation 是有序的对话轮次，构建后不再修改.
type Conversation []Turn

// HasImage 报告对话是否携带图像.
func (c Conversation) HasImage() bool {
	for _, t := range c {
		if t.Image != nil {
			return true
		}
	}
	return false
}

// Request 是一次生成调用.
// 系统提示词通过 SystemPrompt 旁路传递，不作为对话轮次.
type Request struct {
	SystemPrompt string
	Conversation Conversation
	Model        string
}

// Response 是一次生成调用的结果.
// Image 为 nil 表示 Provider 未返回图像.
type Response struct {
	Text          string
	Image         []byte
	ImageMIMEType string
}

// Provider 定义了生成模型的统一调用接口.
// 实现必须支持并发调用.
type Provider interface {
	// Invoke 发起一次生成调用
	Invoke(ctx context.Context, req *Request) (*Response, error)

	// Name 返回 Provider 的唯一标识
	Name() string
}

// ProviderFunc 将函数适配为 Provider.
type ProviderFunc func(ctx context.Context, req *Request) (*Response, error)

// Invoke 调用 f.
func (f ProviderFunc) Invoke(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Name 返回 "func".
func (f ProviderFunc) Name() string { return "func" }
