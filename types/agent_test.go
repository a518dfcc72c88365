package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentOutcome_JSONShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome AgentOutcome
		want    string
	}{
		{
			name:    "text only",
			outcome: AgentOutcome{AgentID: "A", Response: Succeeded("looks good", nil)},
			want:    `{"agentId":"A","response":{"text":"looks good"}}`,
		},
		{
			name:    "empty text still emitted",
			outcome: AgentOutcome{AgentID: "A", Response: Succeeded("", nil)},
			want:    `{"agentId":"A","response":{"text":""}}`,
		},
		{
			name: "with image",
			outcome: AgentOutcome{AgentID: "A", Response: Succeeded("t", &ImageAsset{
				Data: []byte{0xff, 0xd8, 0xff}, MIMEType: MIMEJPEG,
			})},
			want: `{"agentId":"A","response":{"text":"t","image":"/9j/"}}`,
		},
		{
			name:    "failure",
			outcome: AgentOutcome{AgentID: "B", Response: Failed("quota exceeded")},
			want:    `{"agentId":"B","response":{"error":"quota exceeded"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.outcome)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))

			var back AgentOutcome
			require.NoError(t, json.Unmarshal(got, &back))
			assert.Equal(t, tt.outcome.AgentID, back.AgentID)
			assert.Equal(t, tt.outcome.Response.Failed(), back.Response.Failed())
			assert.Equal(t, tt.outcome.Response.Text, back.Response.Text)
			assert.Equal(t, tt.outcome.Response.Error, back.Response.Error)
			assert.Equal(t, tt.outcome.Response.Image.Len(), back.Response.Image.Len())
		})
	}
}

func TestBatchResult_Helpers(t *testing.T) {
	t.Parallel()

	res := BatchResult{
		{AgentID: "A", Response: Succeeded("ok", nil)},
		{AgentID: "B", Response: Failed("boom")},
	}
	assert.Equal(t, 1, res.Failures())

	b, ok := res.Find("B")
	require.True(t, ok)
	assert.Equal(t, "boom", b.Response.Error)

	_, ok = res.Find("C")
	assert.False(t, ok)
}

func TestValidateTurns(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateTurns(nil))
	require.NoError(t, ValidateTurns([]ConversationTurn{UserTurn("a"), ModelTurn("b")}))

	err := ValidateTurns([]ConversationTurn{UserTurn("a"), {Role: "assistant", Content: "b"}})
	require.Error(t, err)
	assert.True(t, Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "messageHistory[1]")
}
