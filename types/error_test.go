package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrProvider, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("gemini")

	if GetErrorCode(err) != ErrProvider {
		t.Fatalf("expected code %s, got %s", ErrProvider, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       *Error
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"config", NewConfigError("missing key"), ErrConfig, http.StatusInternalServerError, false},
		{"validation", NewValidationError("bad"), ErrValidation, http.StatusBadRequest, false},
		{"decode", NewDecodeError("bad image", errors.New("eof")), ErrDecode, http.StatusBadRequest, false},
		{"provider", NewProviderError("gemini", "quota", nil), ErrProvider, http.StatusBadGateway, true},
		{"timeout", NewTimeoutError("slow"), ErrTimeout, http.StatusGatewayTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.True(t, Is(tt.err, tt.code))
		})
	}
}

func TestHelpers_WrappedAndPlain(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("dispatch: %w", NewValidationError("agentPrompts must not be empty"))
	assert.Equal(t, ErrValidation, GetErrorCode(wrapped))
	assert.Equal(t, "agentPrompts must not be empty", ErrorMessage(wrapped))

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)

	plain := errors.New("boom")
	assert.Equal(t, ErrorCode(""), GetErrorCode(plain))
	assert.False(t, IsRetryable(plain))
	assert.Equal(t, "boom", ErrorMessage(plain))
	assert.Equal(t, "", ErrorMessage(nil))
}

func TestProviderError_MessageForwarded(t *testing.T) {
	t.Parallel()

	err := NewProviderError("gemini", "quota exceeded", errors.New("429"))
	assert.Equal(t, "quota exceeded", ErrorMessage(err))
	assert.Equal(t, "gemini", err.Provider)
	assert.Contains(t, err.Error(), "429")
}
