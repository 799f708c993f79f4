package handler

import (
	"net/http"

	"garmentscore/internal/service"
)

// CatalogHandler handles catalog endpoints
type CatalogHandler struct {
	catalogSvc service.CatalogSource
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogSvc service.CatalogSource) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// Get handles GET /v1/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalogSvc.GetActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
