package types

import "fmt"

// Role represents the role of a conversation participant.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the roles the provider accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// ConversationTurn is one prior message in a conversation.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn creates a user turn with the given content.
func UserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content}
}

// ModelTurn creates a model turn with the given content.
func ModelTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleModel, Content: content}
}

// ValidateTurns checks that every turn carries a known role.
func ValidateTurns(turns []ConversationTurn) error {
	for i, t := range turns {
		if !t.Role.Valid() {
			return NewValidationError(fmt.Sprintf("messageHistory[%d]: unsupported role %q", i, t.Role))
		}
	}
	return nil
}
