package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Ayu-zh/placement-connector/internal/api/apierr"
	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/api/request"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/access"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
)

// DefaultKeepalive is the interval between keepalive comments on event streams
const DefaultKeepalive = 15 * time.Second

// AuthHandler exposes the identity authority over HTTP
type AuthHandler struct {
	identity  *identity.Service
	keepalive time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity *identity.Service, keepalive time.Duration) *AuthHandler {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	return &AuthHandler{
		identity:  identity,
		keepalive: keepalive,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	// Missing fields are rejected like any other wrong credential
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		WriteError(w, model.ErrInvalidCredentials)
		return
	}

	grant, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, grant)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.identity.SignUp(r.Context(), identity.SignUpRequest{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Year:       req.Year,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, created)
}

// Logout handles POST /api/v1/auth/logout. It succeeds for missing,
// expired and already revoked tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.ExtractToken(r); token != "" {
		if err := h.identity.SignOut(r.Context(), token); err != nil && !errors.Is(err, model.ErrInvalidSession) {
			WriteError(w, err)
			return
		}
	}
	response.NoContent(w)
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	grant, err := h.identity.Resume(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, grant)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	grant, err := h.identity.Refresh(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, grant)
}

// Identity handles GET /api/v1/identities/{id}: the role-store lookup
func (h *AuthHandler) Identity(w http.ResponseWriter, r *http.Request) {
	id := model.IdentityID(mux.Vars(r)["id"])
	if err := access.RequireSelfOrAdmin(middleware.GetIdentity(r.Context()), id); err != nil {
		WriteError(w, err)
		return
	}
	found, err := h.identity.LookupIdentity(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

// Events handles GET /api/v1/auth/events. It streams the session events of
// the presented token until the session ends or the client disconnects.
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		WriteError(w, apierr.NewUnauthorizedError())
		return
	}
	events, err := h.identity.Watch(r.Context(), token)
	if err != nil {
		WriteError(w, err)
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	send := func(msg []byte) bool {
		if _, err := w.Write(msg); err != nil {
			return false
		}
		return rc.Flush() == nil
	}
	if !send(formatSSEMessage("connected", `{"status":"connected"}`)) {
		return
	}

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return
			}
			if !send(formatSSEMessage(string(ev.Type), string(data))) {
				return
			}
			if ev.Type == model.EventSignedOut {
				return
			}

		case <-ticker.C:
			if !send([]byte(": keepalive\n\n")) {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
