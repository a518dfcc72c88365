package conversation

import (
	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/types"
)

// Build 按顺序组装对话.
// trailingImage 非 nil 时追加一条只含图像的 user 轮次.
func Build(history []types.ConversationTurn, trailingImage *types.ImageAsset) llm.Conversation {
	n := len(history)
	if trailingImage != nil {
		n++
	}
	conv := make(llm.Conversation, 0, n)
	for _, t := range history {
		conv = append(conv, llm.Turn{Role: t.Role, Text: t.Content})
	}
	if trailingImage != nil {
		conv = append(conv, llm.Turn{Role: types.RoleUser, Image: trailingImage})
	}
	return conv
}

// Request 将提示词归一化并组装为完整请求.
func Request(p Prompt, trailingImage *types.ImageAsset, model string) (*llm.Request, error) {
	system, history, err := Normalize(p)
	if err != nil {
		return nil, err
	}
	return &llm.Request{
		SystemPrompt: system,
		Conversation: Build(history, trailingImage),
		Model:        model,
	}, nil
}
