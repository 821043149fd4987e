package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/handler/dto"
	"github.com/civicreport/civicreport/internal/service"
)

// IssueHandler handles HTTP requests for issue operations.
type IssueHandler struct {
	svc    *service.IssueService
	logger *slog.Logger
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(svc *service.IssueService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/issues.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateIssueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	issue, err := h.svc.CreateIssue(r.Context(), auth.IdentityFromContext(r.Context()), service.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		Image:       req.Image,
		Location:    req.Location.Location,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.IssueResponse{Success: true, Data: issue})
}

// List handles GET /api/v1/issues.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	issues, err := h.svc.ListIssues(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueListResponse(issues))
}

// Get handles GET /api/v1/issues/{id}.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	issue, err := h.svc.GetIssue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IssueResponse{Success: true, Data: issue})
}

// Mine handles GET /api/v1/issues/my-issues.
func (h *IssueHandler) Mine(w http.ResponseWriter, r *http.Request) {
	issues, err := h.svc.ListMyIssues(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueListResponse(issues))
}

// Stats handles GET /api/v1/issues/stats.
func (h *IssueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IssueStatsResponse{Success: true, Data: stats})
}

// UpdateStatus handles PATCH /api/v1/issues/{id}/status.
func (h *IssueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateIssueStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	issue, err := h.svc.UpdateStatus(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IssueResponse{Success: true, Data: issue})
}
