package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

type stubAuthenticator map[string]*model.Identity

func (a stubAuthenticator) Authenticate(_ context.Context, token string) (*model.Identity, *model.AuthSession, error) {
	identity, ok := a[token]
	if !ok {
		return nil, nil, model.ErrInvalidSession
	}
	return identity, &model.AuthSession{ID: "sess-" + model.SessionID(token), IdentityID: identity.ID}, nil
}

var authenticator = stubAuthenticator{
	"admin-token":   {ID: "admin-1", Role: model.RoleAdmin},
	"student-token": {ID: "s1", Role: model.RoleStudent},
}

func TestAuthPutsIdentityAndTokenInContext(t *testing.T) {
	var gotIdentity *model.Identity
	var gotToken string
	h := Auth(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = GetIdentity(r.Context())
		gotToken = GetToken(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.IdentityID("s1"), gotIdentity.ID)
	assert.Equal(t, "student-token", gotToken)
}

func TestAuthRejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"unknown token", "Bearer forged"},
		{"wrong scheme", "Basic student-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := Auth(authenticator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.False(t, called)
		})
	}
}

func TestSessionCookieIsAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "admin-token"})
	assert.Equal(t, "admin-token", ExtractToken(req))
}

func TestRequireAdmin(t *testing.T) {
	h := Auth(authenticator)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	for token, want := range map[string]int{
		"admin-token":   http.StatusNoContent,
		"student-token": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, token)
	}
}
