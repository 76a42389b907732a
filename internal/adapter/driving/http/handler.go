package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/prapprover/internal/application"
	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the JSON relay API.
type Handler struct {
	relay       *application.RelayService
	environment string
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(relay *application.RelayService, environment string, logger *slog.Logger) *Handler {
	return &Handler{
		relay:       relay,
		environment: environment,
		logger:      logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the given mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/check-gh", h.CheckGH)
	mux.HandleFunc("GET /api/reviewers", h.ListReviewers)
	mux.HandleFunc("GET /api/pr-details", h.GetPRDetails)
	mux.HandleFunc("POST /api/review-pr", h.ReviewPR)
	mux.HandleFunc("POST /api/approve-pr", h.ApprovePR)
	mux.HandleFunc("POST /api/merge-pr", h.MergePR)
	mux.HandleFunc("GET /api/diagnostics", h.Diagnostics)
	mux.HandleFunc("GET /api/health", h.Health)
}

// CheckGH reports whether the gh CLI can be executed. It answers 200 even
// when gh is missing; the body carries the outcome.
func (h *Handler) CheckGH(w http.ResponseWriter, r *http.Request) {
	status := h.relay.CheckToolAvailability(r.Context())
	writeJSON(w, http.StatusOK, toToolStatusResponse(status))
}

// ListReviewers returns the identity gh is authenticated as.
func (h *Handler) ListReviewers(w http.ResponseWriter, r *http.Request) {
	reviewers, err := h.relay.ListReviewers(r.Context())
	if err != nil {
		status := statusFor(err)
		h.logFailure("failed to list reviewers", status, err)
		writeError(w, status, model.UserMessage(err, "internal server error"))
		return
	}

	resp := make([]ReviewerResponse, 0, len(reviewers))
	for _, rv := range reviewers {
		resp = append(resp, toReviewerResponse(rv))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetPRDetails returns a fresh snapshot of the pull request in the url query parameter.
func (h *Handler) GetPRDetails(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.relay.GetPullRequestDetails(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		status := statusFor(err)
		h.logFailure("failed to fetch PR details", status, err)
		writeJSON(w, status, PRDetailsResponse{
			Success: false,
			Message: model.UserMessage(err, "internal server error"),
			Error:   exposedDetail(err),
		})
		return
	}

	data := toSnapshotResponse(snapshot)
	writeJSON(w, http.StatusOK, PRDetailsResponse{Success: true, Data: &data})
}

// ReviewPR records an approve, comment or request-changes review.
func (h *Handler) ReviewPR(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return
	}

	h.review(w, r, req)
}

// ApprovePR is kept for older clients. The action is always approve,
// whatever the body says.
func (h *Handler) ApprovePR(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return
	}

	req.Action = string(model.ReviewActionApprove)
	h.review(w, r, req)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, req ReviewRequest) {
	result, err := h.relay.SubmitReview(r.Context(), model.ReviewRequest{
		URL:     req.PRURL,
		Action:  model.ReviewAction(req.Action),
		Comment: req.Comment,
	})
	if err != nil {
		status := statusFor(err)
		h.logFailure("failed to review PR", status, err)
		writeJSON(w, status, MessageResponse{
			Message: model.UserMessage(err, "internal server error"),
			Error:   exposedDetail(err),
		})
		return
	}

	h.logger.Info("PR reviewed",
		"pr", result.Reference.String(),
		"action", result.Action,
		"reviewer", result.Reviewer,
	)

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: result.Message,
		Data: ReviewData{
			PR:       result.Reference.String(),
			Reviewer: result.Reviewer,
			Action:   string(result.Action),
		},
	})
}

// MergePR merges a pull request with the requested strategy.
func (h *Handler) MergePR(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return
	}

	result, err := h.relay.MergePullRequest(r.Context(), model.MergeRequest{
		URL:          req.PRURL,
		Strategy:     model.MergeStrategy(req.Strategy),
		DeleteBranch: req.DeleteBranch,
	})
	if err != nil {
		status := statusFor(err)
		h.logFailure("failed to merge PR", status, err)
		writeJSON(w, status, MessageResponse{
			Message: model.UserMessage(err, "internal server error"),
			Error:   exposedDetail(err),
		})
		return
	}

	h.logger.Info("PR merged",
		"pr", result.Reference.String(),
		"strategy", result.Strategy,
		"user", result.User,
	)

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: result.Message,
		Data: MergeData{
			PR:            result.Reference.String(),
			User:          result.User,
			Strategy:      string(result.Strategy),
			BranchDeleted: result.BranchDeleted,
		},
	})
}

// Diagnostics runs every environment check and returns the bundle.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	diag := h.relay.RunDiagnostics(r.Context(), h.environment)
	writeJSON(w, http.StatusOK, toDiagnosticsResponse(diag))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(msg string, status int, err error) {
	if status < http.StatusInternalServerError {
		h.logger.Warn(msg, "status", status, "error", err)
		return
	}
	h.logger.Error(msg, "status", status, "error", err)
}

// statusFor maps a relay error kind to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidReference),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidStrategy):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrToolUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrToolExecution):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// exposedDetail returns the gh failure text for tool execution errors. Other
// kinds carry no detail worth showing.
func exposedDetail(err error) string {
	if errors.Is(err, model.ErrToolExecution) {
		return model.Detail(err)
	}
	return ""
}
