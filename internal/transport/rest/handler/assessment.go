package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"garmentscore/internal/model"
	"garmentscore/internal/service"
	"garmentscore/internal/transport/rest/middleware"
)

// AssessmentHandler handles assessment endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// Submit handles POST /v1/assessments
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	if clientID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.SubmissionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Responses == nil {
		req.Responses = model.Responses{}
	}

	report, err := h.assessmentSvc.Submit(r.Context(), clientID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// Get handles GET /v1/assessments/{id}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.assessmentSvc.Get(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ListByClient handles GET /v1/clients/{clientId}/assessments
func (h *AssessmentHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	list, err := h.assessmentSvc.ListByClient(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
