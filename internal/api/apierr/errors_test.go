package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"joined session error", errors.Join(model.ErrInvalidSession, errors.New("token is expired")), http.StatusUnauthorized, CodeInvalidSession},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"wrapped not found", fmt.Errorf("load: %w", model.ErrJobNotFound), http.StatusNotFound, CodeJobNotFound},
		{"validation", fmt.Errorf("%w: title is required", model.ErrInvalidInput), http.StatusBadRequest, CodeInvalidInput},
		{"request error", NewInvalidRequestError("bad body"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", errors.New("db error: connection reset"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotContains(t, body.Error.Message, "db error")
		})
	}
}

func TestSentinelRoundTrip(t *testing.T) {
	for _, m := range mappings {
		assert.ErrorIs(t, Sentinel(m.code), m.err, m.code)
	}
	assert.ErrorIs(t, Sentinel(CodeInvalidInput), model.ErrInvalidInput)
	assert.ErrorIs(t, Sentinel(CodeInvalidRequest), model.ErrInvalidInput)
	assert.ErrorIs(t, Sentinel(CodeUnauthorized), model.ErrInvalidSession)
	assert.Nil(t, Sentinel(CodeInternalError))
}
