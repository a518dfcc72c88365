package conversation

import (
	"github.com/BaSui01/framelens/types"
)

// Prompt 是 FlatPrompt 或 StructuredPrompt.
type Prompt interface {
	isPrompt()
}

// FlatPrompt 是旧版单条提示词.
type FlatPrompt struct {
	Text string
}

// StructuredPrompt 是系统提示词加多轮历史.
type StructuredPrompt struct {
	SystemPrompt   string
	MessageHistory []types.ConversationTurn
}

func (FlatPrompt) isPrompt()       {}
func (StructuredPrompt) isPrompt() {}

// Normalize 将提示词统一为系统提示词与历史.
// 历史中出现 user/model 以外的角色时返回 ValidationError.
func Normalize(p Prompt) (string, []types.ConversationTurn, error) {
	switch v := p.(type) {
	case FlatPrompt:
		if v.Text == "" {
			return "", nil, types.NewValidationError("prompt must not be empty")
		}
		return "", []types.ConversationTurn{types.UserTurn(v.Text)}, nil
	case *FlatPrompt:
		if v == nil {
			return "", nil, types.NewValidationError("prompt is required")
		}
		return Normalize(*v)
	case StructuredPrompt:
		if err := ValidateHistory(v.MessageHistory); err != nil {
			return "", nil, err
		}
		return v.SystemPrompt, cloneTurns(v.MessageHistory), nil
	case *StructuredPrompt:
		if v == nil {
			return "", nil, types.NewValidationError("prompt is required")
		}
		return Normalize(*v)
	default:
		return "", nil, types.NewValidationError("prompt is required")
	}
}

// ValidateHistory 校验历史轮次的角色.
func ValidateHistory(history []types.ConversationTurn) error {
	return types.ValidateTurns(history)
}

func cloneTurns(turns []types.ConversationTurn) []types.ConversationTurn {
	if turns == nil {
		return []types.ConversationTurn{}
	}
	out := make([]types.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}
