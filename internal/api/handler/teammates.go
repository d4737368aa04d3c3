package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/teammates"
)

// TeammateHandler handles teammate request endpoints
type TeammateHandler struct {
	teammates *teammates.Service
}

// NewTeammateHandler creates a new teammate handler
func NewTeammateHandler(teammates *teammates.Service) *TeammateHandler {
	return &TeammateHandler{teammates: teammates}
}

// List handles GET /api/v1/teammates
func (h *TeammateHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.teammates.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Items(w, list)
}

// Search handles GET /api/v1/teammates/search?q=
func (h *TeammateHandler) Search(w http.ResponseWriter, r *http.Request) {
	list, err := h.teammates.Search(r.Context(), middleware.GetIdentity(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Items(w, list)
}

// Post handles POST /api/v1/teammates
func (h *TeammateHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req model.TeammateRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	created, err := h.teammates.Post(r.Context(), middleware.GetIdentity(r.Context()), &req)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, created)
}

// Delete handles DELETE /api/v1/teammates/{id}
func (h *TeammateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.teammates.Delete(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
