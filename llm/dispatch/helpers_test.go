package dispatch

import (
	"github.com/BaSui01/framelens/llm/conversation"
	"github.com/BaSui01/framelens/types"
)

func conversationFlat(text string) conversation.Prompt {
	return conversation.FlatPrompt{Text: text}
}

func conversationStructured(system string, turns ...types.ConversationTurn) conversation.Prompt {
	return conversation.StructuredPrompt{SystemPrompt: system, MessageHistory: turns}
}
