package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/novo-pos/api/internal/store"
)

// SectionStore defines the database methods needed by section handlers.
// Satisfied by *store.Store; narrow interface for testability.
type SectionStore interface {
	CreateSection(ctx context.Context, name string) (store.Section, error)
	ListSections(ctx context.Context) ([]store.Section, error)
	DeleteSection(ctx context.Context, id int64) (int64, error)
}

// SectionHandler handles menu section endpoints.
type SectionHandler struct {
	store SectionStore
}

// NewSectionHandler creates a new SectionHandler.
func NewSectionHandler(store SectionStore) *SectionHandler {
	return &SectionHandler{store: store}
}

// RegisterPublicRoutes registers the customer-facing section read.
func (h *SectionHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterAdminRoutes registers section mutations; expected behind auth.
func (h *SectionHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type sectionRequest struct {
	Name string `json:"name"`
}

type sectionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// List handles GET /sections.
func (h *SectionHandler) List(w http.ResponseWriter, r *http.Request) {
	sections, err := h.store.ListSections(r.Context())
	if err != nil {
		log.Printf("ERROR: list sections: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]sectionResponse, len(sections))
	for i, s := range sections {
		resp[i] = sectionResponse{ID: s.ID, Name: s.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /sections.
func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	section, err := h.store.CreateSection(r.Context(), req.Name)
	if err != nil {
		log.Printf("ERROR: create section: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, sectionResponse{ID: section.ID, Name: section.Name})
}

// Delete handles DELETE /sections/{id}.
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid section ID"})
		return
	}

	if _, err := h.store.DeleteSection(r.Context(), id); err != nil {
		log.Printf("ERROR: delete section: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
