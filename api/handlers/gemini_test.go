package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaSui01/framelens/api"
	"github.com/BaSui01/framelens/llm/dispatch"
	"github.com/BaSui01/framelens/llm/image"
	"github.com/BaSui01/framelens/testutil/fixtures"
	"github.com/BaSui01/framelens/testutil/mocks"
	"github.com/BaSui01/framelens/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 测试辅助
// =============================================================================

func newTestHandler(provider *mocks.MockProvider) *GeminiHandler {
	logger := zap.NewNop()
	d := dispatch.New(provider, image.NewNormalizer(image.DefaultConfig(), logger), dispatch.DefaultConfig(), logger)
	return NewGeminiHandler(d, 0, logger)
}

func serve(t *testing.T, h *GeminiHandler, path string, body any) (*httptest.ResponseRecorder, api.RawResponse) {
	t.Helper()

	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}

	mux := http.NewServeMux()
	h.Register(mux)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(w, r)

	var resp api.RawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

// =============================================================================
// 🧪 batch-images
// =============================================================================

func TestHandleBatchImages_PartialFailure(t *testing.T) {
	provider := mocks.NewMockProvider().
		WithAgentResponse("A", "two laptops and a coffee cup").
		WithAgentError("B", types.NewProviderError("gemini", "quota exceeded", nil))
	h := newTestHandler(provider)

	prompts := make([]api.AgentPrompt, 0, 2)
	for _, spec := range fixtures.BusinessAndFilmSpecs() {
		prompts = append(prompts, api.NewAgentPrompt(spec))
	}

	w, resp := serve(t, h, "/api/gemini/batch-images", api.BatchImagesRequest{
		ImageData:    fixtures.PNGDataURI(64, 48),
		AgentPrompts: prompts,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	var result types.BatchResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.Len(t, result, 2)

	assert.Equal(t, "A", result[0].AgentID)
	assert.False(t, result[0].Response.Failed())
	assert.Equal(t, "two laptops and a coffee cup", result[0].Response.Text)

	assert.Equal(t, "B", result[1].AgentID)
	assert.True(t, result[1].Response.Failed())
	assert.Equal(t, "quota exceeded", result[1].Response.Error)
}

func TestHandleBatchImages_WireShape(t *testing.T) {
	provider := mocks.NewMockProvider().WithAgentError("B", errors.New("boom"))
	h := newTestHandler(provider)

	body := `{"imageData":"` + fixtures.JPEGDataURI(32, 32) + `","agentPrompts":[` +
		`{"agentId":"A","systemPrompt":"s","messageHistory":[{"role":"user","content":"hi"}]},` +
		`{"agentId":"B"}]}`
	w, resp := serve(t, h, "/api/gemini/batch-images", body)

	require.Equal(t, http.StatusOK, w.Code)

	var raw []map[string]map[string]any
	var outer []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &outer))
	require.Len(t, outer, 2)
	for _, o := range outer {
		var response map[string]any
		require.NoError(t, json.Unmarshal(o["response"], &response))
		raw = append(raw, map[string]map[string]any{"response": response})
	}
	assert.Contains(t, raw[0]["response"], "text")
	assert.NotContains(t, raw[0]["response"], "error")
	assert.Equal(t, "boom", raw[1]["response"]["error"])
	assert.NotContains(t, raw[1]["response"], "text")

	// B 没有 messageHistory，视为空历史，只剩帧
	call, ok := provider.CallFor("B")
	require.True(t, ok)
	assert.True(t, call.Request.Conversation.HasImage())
}

func TestHandleBatchImages_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:    "missing imageData",
			body:    `{"agentPrompts":[{"agentId":"A"}]}`,
			status:  http.StatusBadRequest,
			message: api.BatchRequiredMessage,
		},
		{
			name:    "missing agentPrompts",
			body:    `{"imageData":"` + fixtures.PNGDataURI(8, 8) + `"}`,
			status:  http.StatusBadRequest,
			message: api.BatchRequiredMessage,
		},
		{
			name:    "empty agentPrompts",
			body:    `{"imageData":"hello","agentPrompts":[]}`,
			status:  http.StatusBadRequest,
			message: api.BatchRequiredMessage,
		},
		{
			name:    "undecodable png",
			body:    `{"imageData":"` + fixtures.GarbageDataURI() + `","agentPrompts":[{"agentId":"A"}]}`,
			status:  http.StatusBadRequest,
			message: "unrecognized image data",
		},
		{
			name:    "gif frame",
			body:    `{"imageData":"` + fixtures.GIFDataURI(8, 8) + `","agentPrompts":[{"agentId":"A"}]}`,
			status:  http.StatusBadRequest,
			message: image.InvalidImageFormatMessage,
		},
		{
			name:    "not a data uri",
			body:    `{"imageData":"hello","agentPrompts":[{"agentId":"A"}]}`,
			status:  http.StatusBadRequest,
			message: image.InvalidImageFormatMessage,
		},
		{
			name:    "history is a string",
			body:    `{"imageData":"` + fixtures.PNGDataURI(8, 8) + `","agentPrompts":[{"agentId":"A","messageHistory":"hi"}]}`,
			status:  http.StatusBadRequest,
			message: "agentPrompts[0]: " + api.MessageHistoryMessage,
		},
		{
			name:   "unknown field",
			body:   `{"imageData":"x","agentPrompts":[],"extra":1}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mocks.NewMockProvider()
			h := newTestHandler(provider)

			w, resp := serve(t, h, "/api/gemini/batch-images", tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error)
			}
			assert.Zero(t, provider.GetCallCount(), "validation must precede dispatch")
		})
	}
}

// =============================================================================
// 🧪 images
// =============================================================================

func TestHandleImages(t *testing.T) {
	provider := mocks.NewMockProvider().WithLLMResponse(fixtures.ImageResponse("a storyboard", 1280, 720))
	h := newTestHandler(provider)

	w, resp := serve(t, h, "/api/gemini/images", api.ImagesRequest{
		Prompt:    "Sketch this frame",
		ImageData: fixtures.PNGDataURI(64, 64),
	})

	require.Equal(t, http.StatusOK, w.Code)

	var out api.ImageResult
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, "a storyboard", out.Text)

	img, err := base64.StdEncoding.DecodeString(out.Image)
	require.NoError(t, err)
	info, err := image.Sniff(img)
	require.NoError(t, err)
	assert.Equal(t, image.FormatJPEG, info.Format)
	assert.LessOrEqual(t, info.Width, image.DefaultConfig().MaxWidth)
}

func TestHandleImages_Validation(t *testing.T) {
	provider := mocks.NewMockProvider()
	h := newTestHandler(provider)

	w, resp := serve(t, h, "/api/gemini/images", api.ImagesRequest{Prompt: "only a prompt"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.ImageRequiredMessage, resp.Error)
	assert.Zero(t, provider.GetCallCount())
}

func TestHandleImages_ProviderError(t *testing.T) {
	provider := mocks.NewErrorProvider(types.NewProviderError("gemini", "upstream unavailable", nil))
	h := newTestHandler(provider)

	w, resp := serve(t, h, "/api/gemini/images", api.ImagesRequest{
		Prompt:    "Describe",
		ImageData: fixtures.JPEGDataURI(16, 16),
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "upstream unavailable", resp.Error)
	assert.Equal(t, string(types.ErrProvider), resp.Code)
}

// =============================================================================
// 🧪 text
// =============================================================================

func TestHandleText(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantSystem string
		wantTurns  int
	}{
		{
			name:      "flat prompt",
			body:      `{"prompt":"Summarize the meeting"}`,
			wantTurns: 1,
		},
		{
			name:       "structured",
			body:       `{"systemPrompt":"You are terse.","messageHistory":[{"role":"user","content":"hi"},{"role":"model","content":"hello"},{"role":"user","content":"and?"}]}`,
			wantSystem: "You are terse.",
			wantTurns:  3,
		},
		{
			name:      "prompt wins over history",
			body:      `{"prompt":"flat","messageHistory":[{"role":"user","content":"ignored"}]}`,
			wantTurns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mocks.NewSuccessProvider("generated")
			h := newTestHandler(provider)

			w, resp := serve(t, h, "/api/gemini/text", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			var out api.TextResult
			require.NoError(t, json.Unmarshal(resp.Data, &out))
			assert.Equal(t, "generated", out.Text)

			call := provider.GetLastCall()
			require.NotNil(t, call)
			assert.Equal(t, tt.wantSystem, call.Request.SystemPrompt)
			assert.Len(t, call.Request.Conversation, tt.wantTurns)
			assert.False(t, call.Request.Conversation.HasImage())
		})
	}
}

func TestHandleText_MalformedHistory(t *testing.T) {
	bodies := []string{
		`{"messageHistory":"hello"}`,
		`{"messageHistory":{"role":"user","content":"x"}}`,
		`{"messageHistory":[1,2]}`,
		`{"messageHistory":[{"role":"user"}]}`,
		`{"systemPrompt":"only system"}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			provider := mocks.NewMockProvider()
			h := newTestHandler(provider)

			w, resp := serve(t, h, "/api/gemini/text", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, api.MessageHistoryMessage, resp.Error)
			assert.Zero(t, provider.GetCallCount())
		})
	}
}
