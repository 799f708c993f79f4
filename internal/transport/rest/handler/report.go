package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"garmentscore/internal/service"
	"garmentscore/internal/transport/rest/middleware"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Get handles GET /v1/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.GetByID(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetLatest handles GET /v1/assessments/{id}/report
func (h *ReportHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.GetLatest(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Regenerate handles POST /v1/assessments/{id}/report
func (h *ReportHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.Regenerate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// Scoreboard handles GET /v1/scoreboard?limit=N
func (h *ReportHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.reportSvc.Scoreboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Standing handles GET /v1/scoreboard/{clientId}
func (h *ReportHandler) Standing(w http.ResponseWriter, r *http.Request) {
	entry, err := h.reportSvc.Standing(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
