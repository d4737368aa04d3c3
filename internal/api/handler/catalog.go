package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/catalog"
)

// CatalogHandler handles certification and hackathon endpoints
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCertifications handles GET /api/v1/certifications
func (h *CatalogHandler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListCertifications(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Items(w, list)
}

// CreateCertification handles POST /api/v1/certifications
func (h *CatalogHandler) CreateCertification(w http.ResponseWriter, r *http.Request) {
	var cert model.Certification
	if err := decode(r, &cert); err != nil {
		WriteError(w, err)
		return
	}
	created, err := h.catalog.CreateCertification(r.Context(), middleware.GetIdentity(r.Context()), &cert)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, created)
}

// UpdateCertification handles PUT /api/v1/certifications/{id}
func (h *CatalogHandler) UpdateCertification(w http.ResponseWriter, r *http.Request) {
	var cert model.Certification
	if err := decode(r, &cert); err != nil {
		WriteError(w, err)
		return
	}
	cert.ID = mux.Vars(r)["id"]
	updated, err := h.catalog.UpdateCertification(r.Context(), middleware.GetIdentity(r.Context()), &cert)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// ToggleCertification handles POST /api/v1/certifications/{id}/toggle
func (h *CatalogHandler) ToggleCertification(w http.ResponseWriter, r *http.Request) {
	cert, err := h.catalog.ToggleCertification(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cert)
}

// DeleteCertification handles DELETE /api/v1/certifications/{id}
func (h *CatalogHandler) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCertification(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// ListHackathons handles GET /api/v1/hackathons
func (h *CatalogHandler) ListHackathons(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListHackathons(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Items(w, list)
}

// CreateHackathon handles POST /api/v1/hackathons
func (h *CatalogHandler) CreateHackathon(w http.ResponseWriter, r *http.Request) {
	var hackathon model.Hackathon
	if err := decode(r, &hackathon); err != nil {
		WriteError(w, err)
		return
	}
	created, err := h.catalog.CreateHackathon(r.Context(), middleware.GetIdentity(r.Context()), &hackathon)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, created)
}

// UpdateHackathon handles PUT /api/v1/hackathons/{id}
func (h *CatalogHandler) UpdateHackathon(w http.ResponseWriter, r *http.Request) {
	var hackathon model.Hackathon
	if err := decode(r, &hackathon); err != nil {
		WriteError(w, err)
		return
	}
	hackathon.ID = mux.Vars(r)["id"]
	updated, err := h.catalog.UpdateHackathon(r.Context(), middleware.GetIdentity(r.Context()), &hackathon)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// ToggleHackathon handles POST /api/v1/hackathons/{id}/toggle
func (h *CatalogHandler) ToggleHackathon(w http.ResponseWriter, r *http.Request) {
	hackathon, err := h.catalog.ToggleHackathon(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, hackathon)
}

// DeleteHackathon handles DELETE /api/v1/hackathons/{id}
func (h *CatalogHandler) DeleteHackathon(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteHackathon(r.Context(), middleware.GetIdentity(r.Context()), mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
