package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ToolStatusResponse is the body of GET /api/check-gh.
type ToolStatusResponse struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReviewerResponse is the JSON representation of the gh session identity.
type ReviewerResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Photo       string `json:"photo"`
}

// SnapshotResponse mirrors the fields gh pr view --json returns.
type SnapshotResponse struct {
	Title          string         `json:"title"`
	State          string         `json:"state"`
	Author         AuthorResponse `json:"author"`
	CreatedAt      string         `json:"createdAt"`
	Body           string         `json:"body"`
	URL            string         `json:"url"`
	ReviewDecision string         `json:"reviewDecision"`
	IsDraft        bool           `json:"isDraft"`
}

// AuthorResponse is the author of a pull request.
type AuthorResponse struct {
	Login string `json:"login"`
}

// PRDetailsResponse is the body of GET /api/pr-details.
type PRDetailsResponse struct {
	Success bool              `json:"success"`
	Data    *SnapshotResponse `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// ReviewRequest is the JSON body of POST /api/review-pr and /api/approve-pr.
type ReviewRequest struct {
	PRURL   string `json:"prUrl"`
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

// MergeRequest is the JSON body of POST /api/merge-pr.
type MergeRequest struct {
	PRURL        string `json:"prUrl"`
	Strategy     string `json:"strategy,omitempty"`
	DeleteBranch bool   `json:"deleteBranch,omitempty"`
}

// MessageResponse is the body of the review and merge endpoints.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReviewData describes a recorded review.
type ReviewData struct {
	PR       string `json:"pr"`
	Reviewer string `json:"reviewer"`
	Action   string `json:"action"`
}

// MergeData describes a completed merge.
type MergeData struct {
	PR            string `json:"pr"`
	User          string `json:"user"`
	Strategy      string `json:"strategy"`
	BranchDeleted bool   `json:"branchDeleted"`
}

// DiagnosticsResponse is the body of GET /api/diagnostics.
type DiagnosticsResponse struct {
	Timestamp       string                   `json:"timestamp"`
	Environment     string                   `json:"environment"`
	GoVersion       string                   `json:"go_version"`
	Tests           DiagnosticTests          `json:"tests"`
	Recommendations []RecommendationResponse `json:"recommendations"`
}

// DiagnosticTests holds the sub-check outcomes. Auth-dependent checks are
// omitted when the CLI is not installed.
type DiagnosticTests struct {
	CLIInstalled CLICheckResponse    `json:"cli_installed"`
	AuthStatus   *AuthCheckResponse  `json:"auth_status,omitempty"`
	APIAccess    *APICheckResponse   `json:"api_access,omitempty"`
	AuthScopes   *ScopeCheckResponse `json:"auth_scopes,omitempty"`
}

// CLICheckResponse is the cli_installed sub-check.
type CLICheckResponse struct {
	Success bool   `json:"success"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthCheckResponse is the auth_status sub-check.
type AuthCheckResponse struct {
	Success       bool   `json:"success"`
	Authenticated bool   `json:"authenticated"`
	RawOutput     string `json:"raw_output,omitempty"`
	Error         string `json:"error,omitempty"`
}

// APICheckResponse is the api_access sub-check.
type APICheckResponse struct {
	Success  bool          `json:"success"`
	Username string        `json:"username,omitempty"`
	UserData *UserDataJSON `json:"user_data,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// UserDataJSON is the profile subset reported by api_access.
type UserDataJSON struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// ScopeCheckResponse is the auth_scopes sub-check.
type ScopeCheckResponse struct {
	Success bool     `json:"success"`
	Scopes  []string `json:"scopes,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// RecommendationResponse is a remediation step.
type RecommendationResponse struct {
	Text    string `json:"text"`
	Command string `json:"command,omitempty"`
	Link    string `json:"link,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toToolStatusResponse(s model.ToolStatus) ToolStatusResponse {
	return ToolStatusResponse{
		Installed: s.Installed,
		Version:   s.Version,
		Error:     s.Error,
	}
}

func toReviewerResponse(r model.ReviewerIdentity) ReviewerResponse {
	return ReviewerResponse{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Photo:       r.Photo,
	}
}

func toSnapshotResponse(s model.PullRequestSnapshot) SnapshotResponse {
	return SnapshotResponse{
		Title:          s.Title,
		State:          string(s.State),
		Author:         AuthorResponse{Login: s.Author.Login},
		CreatedAt:      s.CreatedAt,
		Body:           s.Body,
		URL:            s.URL,
		ReviewDecision: s.ReviewDecision,
		IsDraft:        s.IsDraft,
	}
}

// toDiagnosticsResponse converts the domain bundle into the wire shape.
// Recommendations is always an array, never null.
func toDiagnosticsResponse(d model.Diagnostics) DiagnosticsResponse {
	resp := DiagnosticsResponse{
		Timestamp:   d.Timestamp.UTC().Format(time.RFC3339),
		Environment: d.Environment,
		GoVersion:   d.GoVersion,
		Tests: DiagnosticTests{
			CLIInstalled: CLICheckResponse{
				Success: d.CLIInstalled.Success,
				Version: d.CLIInstalled.Version,
				Error:   d.CLIInstalled.Error,
			},
		},
		Recommendations: make([]RecommendationResponse, 0, len(d.Recommendations)),
	}

	if d.AuthStatus != nil {
		resp.Tests.AuthStatus = &AuthCheckResponse{
			Success:       d.AuthStatus.Success,
			Authenticated: d.IsAuthenticated(),
			RawOutput:     d.AuthStatus.RawOutput,
			Error:         d.AuthStatus.Error,
		}
	}

	if d.APIAccess != nil {
		check := &APICheckResponse{
			Success: d.APIAccess.Success,
			Error:   d.APIAccess.Error,
		}
		if d.APIAccess.Success {
			check.Username = d.APIAccess.Username
			check.UserData = &UserDataJSON{Name: d.APIAccess.Name, ID: d.APIAccess.UserID}
		}
		resp.Tests.APIAccess = check
	}

	if d.AuthScopes != nil {
		resp.Tests.AuthScopes = &ScopeCheckResponse{
			Success: d.AuthScopes.Success,
			Scopes:  d.AuthScopes.Scopes,
			Error:   d.AuthScopes.Error,
		}
	}

	for _, rec := range d.Recommendations {
		resp.Recommendations = append(resp.Recommendations, RecommendationResponse{
			Text:    rec.Text,
			Command: rec.Command,
			Link:    rec.Link,
		})
	}

	return resp
}
