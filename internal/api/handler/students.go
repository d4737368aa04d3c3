package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/api/request"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/students"
)

// StudentHandler handles student record endpoints
type StudentHandler struct {
	students *students.Service
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students *students.Service) *StudentHandler {
	return &StudentHandler{students: students}
}

// List handles GET /api/v1/students
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.students.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Items(w, list)
}

// Get handles GET /api/v1/students/{id}
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.Get(r.Context(), middleware.GetIdentity(r.Context()), model.IdentityID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, student)
}

// Create handles POST /api/v1/students
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.StudentRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	created, err := h.students.Add(r.Context(), middleware.GetIdentity(r.Context()), students.NewStudent{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Year:       req.Year,
		Status:     req.Status,
		Verified:   req.Verified,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, created)
}

// Update handles PUT /api/v1/students/{id}
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.StudentRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	update := &model.Identity{
		ID:         model.IdentityID(mux.Vars(r)["id"]),
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Year:       req.Year,
		Status:     req.Status,
		Verified:   req.Verified,
	}
	updated, err := h.students.Update(r.Context(), middleware.GetIdentity(r.Context()), update, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/students/{id}
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.students.Delete(r.Context(), middleware.GetIdentity(r.Context()), model.IdentityID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// ToggleVerification handles POST /api/v1/students/{id}/verify
func (h *StudentHandler) ToggleVerification(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.ToggleVerification(r.Context(), middleware.GetIdentity(r.Context()), model.IdentityID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, student)
}
