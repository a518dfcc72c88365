package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// AgentSpec is the configuration of one agent within a dispatch.
// An empty Model falls back to the configured default.
type AgentSpec struct {
	AgentID        string             `json:"agentId"`
	SystemPrompt   string             `json:"systemPrompt,omitempty"`
	MessageHistory []ConversationTurn `json:"messageHistory,omitempty"`
	Model          string             `json:"model,omitempty"`
}

// AgentResponse is either a success (Text, optional Image) or a failure (Error).
// Exactly one of the two shapes is populated.
type AgentResponse struct {
	Text  string
	Image *ImageAsset
	Error string

	failed bool
}

// Succeeded builds a success response.
func Succeeded(text string, image *ImageAsset) AgentResponse {
	return AgentResponse{Text: text, Image: image}
}

// Failed builds a failure response carrying the error message.
func Failed(message string) AgentResponse {
	return AgentResponse{Error: message, failed: true}
}

// Failed reports whether the response is the failure variant.
func (r AgentResponse) Failed() bool {
	return r.failed
}

type agentResponseJSON struct {
	Text  *string `json:"text,omitempty"`
	Image string  `json:"image,omitempty"`
	Error *string `json:"error,omitempty"`
}

// MarshalJSON encodes the success variant as {text, image?} and the failure
// variant as {error}. Images are emitted as base64 JPEG.
func (r AgentResponse) MarshalJSON() ([]byte, error) {
	if r.failed {
		msg := r.Error
		return json.Marshal(agentResponseJSON{Error: &msg})
	}
	text := r.Text
	out := agentResponseJSON{Text: &text}
	if r.Image != nil && len(r.Image.Data) > 0 {
		out.Image = base64.StdEncoding.EncodeToString(r.Image.Data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes either variant. A payload carrying "error" is a failure.
func (r *AgentResponse) UnmarshalJSON(data []byte) error {
	var raw agentResponseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Error != nil {
		*r = Failed(*raw.Error)
		return nil
	}
	var img *ImageAsset
	if raw.Image != "" {
		b, err := base64.StdEncoding.DecodeString(raw.Image)
		if err != nil {
			return fmt.Errorf("decode response image: %w", err)
		}
		img = &ImageAsset{Data: b, MIMEType: MIMEJPEG}
	}
	var text string
	if raw.Text != nil {
		text = *raw.Text
	}
	*r = Succeeded(text, img)
	return nil
}

// AgentOutcome is the result of one agent in a batch.
type AgentOutcome struct {
	AgentID  string        `json:"agentId"`
	Response AgentResponse `json:"response"`
}

// BatchResult holds one outcome per input spec, in input order.
type BatchResult []AgentOutcome

// Failures counts failed outcomes.
func (b BatchResult) Failures() int {
	n := 0
	for _, o := range b {
		if o.Response.Failed() {
			n++
		}
	}
	return n
}

// Find returns the outcome for agentID.
func (b BatchResult) Find(agentID string) (AgentOutcome, bool) {
	for _, o := range b {
		if o.AgentID == agentID {
			return o, true
		}
	}
	return AgentOutcome{}, false
}
