package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/jobs"
)

// JobHandler handles job posting endpoints
type JobHandler struct {
	jobs *jobs.Service
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs *jobs.Service) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// List handles GET /api/v1/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Items(w, list)
}

// Get handles GET /api/v1/jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, job)
}

// Create handles POST /api/v1/jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var job model.Job
	if err := decode(r, &job); err != nil {
		WriteError(w, err)
		return
	}
	created, err := h.jobs.Create(r.Context(), middleware.GetIdentity(r.Context()), &job)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, created)
}

// Update handles PUT /api/v1/jobs/{id}
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var job model.Job
	if err := decode(r, &job); err != nil {
		WriteError(w, err)
		return
	}
	job.ID = mux.Vars(r)["id"]
	updated, err := h.jobs.Update(r.Context(), middleware.GetIdentity(r.Context()), &job)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/jobs/{id}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.Delete(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
