package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"garmentscore/internal/catalog"
	"garmentscore/internal/model"
	"garmentscore/internal/scoring"
	"garmentscore/internal/service"
	"garmentscore/internal/transport/rest/middleware"
)

var validate = validator.New()

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,128}$`)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc     *service.AuthService
	broadcaster service.Broadcaster
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, broadcaster service.Broadcaster) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, broadcaster: broadcaster}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// IssueClientToken handles POST /v1/clients/{clientId}/token
func (h *AuthHandler) IssueClientToken(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]
	if !clientIDPattern.MatchString(clientID) {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	adminID := middleware.GetAdminID(r.Context())
	resp, err := h.authSvc.IssueClientToken(r.Context(), adminID, clientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastToAdmins(service.EventClientApproved, map[string]string{
			"clientId":   clientID,
			"approvedBy": adminID,
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RevokeClient handles DELETE /v1/clients/{clientId}/token
func (h *AuthHandler) RevokeClient(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.RevokeClient(r.Context(), mux.Vars(r)["clientId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// decodeBody decodes and validates a JSON body, writing 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "validation failed",
				"fields": fields,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeServiceError maps service errors to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var integrity *scoring.IntegrityError
	switch {
	case errors.As(err, &integrity):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      integrity.Error(),
			"violations": integrity.Violations,
		})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, catalog.ErrEmptyCatalog):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
