package mailchimp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	body := map[string]any{"status": float64(404), "detail": "Resource not found."}

	tests := []struct {
		name        string
		status      int
		suppress404 bool
		wantError   bool
	}{
		{"ok", 200, false, false},
		{"no content", 204, false, false},
		{"bad request", 400, false, true},
		{"unauthorized", 401, false, true},
		{"forbidden", 403, false, true},
		{"method not allowed", 405, false, true},
		{"not acceptable", 406, false, true},
		{"unprocessable", 422, false, true},
		{"not found", 404, false, true},
		{"not found suppressed", 404, true, false},
		{"bad request with suppress", 400, true, true},
		{"server error is not classified", 500, false, false},
		{"too many requests is not classified", 429, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Classify(tt.status, body, tt.suppress404)
			if !tt.wantError {
				assert.Nil(t, env)
				return
			}
			require.NotNil(t, env)
			assert.Equal(t, OutcomeError, env.Outcome)
			assert.Equal(t, tt.status, env.Status)
			assert.Equal(t, body, env.Raw)
		})
	}
}

func TestClassifyShape(t *testing.T) {
	t.Run("uses detail and status code", func(t *testing.T) {
		env := Classify(404, map[string]any{"detail": "Resource not found."}, false)
		require.NotNil(t, env)
		assert.Equal(t, ErrorCode("404"), env.Code)
		assert.Equal(t, "Resource not found.", env.Message)
	})

	t.Run("falls back to status text", func(t *testing.T) {
		env := Classify(422, nil, false)
		require.NotNil(t, env)
		assert.Equal(t, "Unprocessable Entity", env.Message)
		assert.Nil(t, env.Raw)
	})

	t.Run("ignores body content for non-error status", func(t *testing.T) {
		assert.Nil(t, Classify(200, map[string]any{"status": float64(400), "detail": "looks like an error"}, false))
	})
}
