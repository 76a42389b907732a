package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/prapprover/internal/adapter/driving/http"
	"github.com/ericfisherdev/prapprover/internal/application"
	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// --- Mock implementations ---

type mockTool struct {
	versionErr    error
	authStatus    model.AuthStatus
	authStatusErr error
	user          model.APIUser
	userErr       error
	snapshot      model.PullRequestSnapshot
	snapshotErr   error
	reviewErr     error
	mergeErr      error

	reviewed     bool
	lastAction   model.ReviewAction
	lastBody     string
	lastStrategy model.MergeStrategy
}

func (m *mockTool) Version(_ context.Context) (string, error) {
	if m.versionErr != nil {
		return "", m.versionErr
	}
	return "gh version 2.62.0 (2024-11-14)", nil
}

func (m *mockTool) AuthStatus(_ context.Context) (model.AuthStatus, error) {
	return m.authStatus, m.authStatusErr
}

func (m *mockTool) CurrentUser(_ context.Context) (model.APIUser, error) {
	return m.user, m.userErr
}

func (m *mockTool) ViewPullRequest(_ context.Context, _ model.PullRequestReference) (model.PullRequestSnapshot, error) {
	return m.snapshot, m.snapshotErr
}

func (m *mockTool) Review(_ context.Context, _ model.PullRequestReference, action model.ReviewAction, body string) error {
	m.reviewed = true
	m.lastAction = action
	m.lastBody = body
	return m.reviewErr
}

func (m *mockTool) Merge(_ context.Context, _ model.PullRequestReference, strategy model.MergeStrategy, _ bool) error {
	m.lastStrategy = strategy
	return m.mergeErr
}

func authenticatedTool() *mockTool {
	return &mockTool{
		authStatus: model.AuthStatus{
			Raw:      "Logged in to github.com account octocat (keyring)\nToken scopes: 'repo'",
			LoggedIn: true,
			Username: "octocat",
			Scopes:   []string{"repo"},
		},
		user: model.APIUser{ID: 1, Login: "octocat", Name: "The Octocat"},
		snapshot: model.PullRequestSnapshot{
			Title:     "Add feature",
			State:     model.PRStateOpen,
			Author:    model.PullRequestAuthor{Login: "monalisa"},
			CreatedAt: "2025-01-02T03:04:05Z",
			URL:       testPRURL,
		},
	}
}

const testPRURL = "https://github.com/octo/hello/pull/42"

// --- Helpers ---

func setupMux(tool *mockTool) http.Handler {
	relay := application.NewRelayService(tool, slog.Default())
	h := httphandler.NewHandler(relay, "test", slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return httphandler.ApplyMiddleware(mux, "http://localhost:3000", slog.Default())
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "response body: %s", rec.Body.String())
}

// --- Tests ---

func TestCheckGH(t *testing.T) {
	tests := []struct {
		name          string
		tool          *mockTool
		wantInstalled bool
	}{
		{name: "installed", tool: authenticatedTool(), wantInstalled: true},
		{name: "not installed", tool: &mockTool{versionErr: errors.New("not found")}, wantInstalled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, setupMux(tt.tool), http.MethodGet, "/api/check-gh", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var resp httphandler.ToolStatusResponse
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantInstalled, resp.Installed)
			if tt.wantInstalled {
				assert.Equal(t, "gh version 2.62.0 (2024-11-14)", resp.Version)
			} else {
				assert.Equal(t, "GitHub CLI is not installed or not in PATH", resp.Error)
			}
		})
	}
}

func TestListReviewers(t *testing.T) {
	rec := doJSON(t, setupMux(authenticatedTool()), http.MethodGet, "/api/reviewers", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, map[string]any{
		"id":          "current-user",
		"username":    "octocat",
		"displayName": "The Octocat",
		"photo":       "https://github.com/octocat.png",
	}, resp[0])
}

func TestListReviewers_Errors(t *testing.T) {
	tests := []struct {
		name       string
		tool       *mockTool
		wantStatus int
		wantError  string
	}{
		{
			name:       "gh missing",
			tool:       &mockTool{versionErr: errors.New("not found")},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "GitHub CLI is not installed or not in PATH",
		},
		{
			name:       "not logged in",
			tool:       &mockTool{userErr: errors.New("exit 4"), authStatusErr: errors.New("exit 1")},
			wantStatus: http.StatusUnauthorized,
			wantError:  `Not authenticated with GitHub CLI. Run "gh auth login" on the server.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, setupMux(tt.tool), http.MethodGet, "/api/reviewers", "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantError, resp["error"])
		})
	}
}

func TestGetPRDetails(t *testing.T) {
	rec := doJSON(t, setupMux(authenticatedTool()), http.MethodGet, "/api/pr-details?url="+testPRURL, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.PRDetailsResponse
	decodeJSON(t, rec, &resp)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Add feature", resp.Data.Title)
	assert.Equal(t, "OPEN", resp.Data.State)
	assert.Equal(t, "monalisa", resp.Data.Author.Login)
	assert.Equal(t, "2025-01-02T03:04:05Z", resp.Data.CreatedAt)
}

func TestGetPRDetails_Errors(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		snapshotErr error
		wantStatus  int
		wantMessage string
	}{
		{name: "missing url", query: "", wantStatus: http.StatusBadRequest, wantMessage: "Missing PR URL"},
		{
			name:        "malformed url",
			query:       "?url=https://github.com/octo/hello/issues/1",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid PR URL format. Expected format: https://github.com/owner/repo/pull/123",
		},
		{
			name:        "gh fails",
			query:       "?url=" + testPRURL,
			snapshotErr: errors.New("Could not resolve to a PullRequest"),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Failed to fetch PR details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := authenticatedTool()
			tool.snapshotErr = tt.snapshotErr

			rec := doJSON(t, setupMux(tool), http.MethodGet, "/api/pr-details"+tt.query, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp httphandler.PRDetailsResponse
			decodeJSON(t, rec, &resp)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestReviewPR(t *testing.T) {
	tool := authenticatedTool()
	body := `{"prUrl":"` + testPRURL + `","action":"request-changes","comment":"Please add \"tests\""}`

	rec := doJSON(t, setupMux(tool), http.MethodPost, "/api/review-pr", body)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string                 `json:"message"`
		Data    httphandler.ReviewData `json:"data"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "PR requested changes on successfully", resp.Message)
	assert.Equal(t, httphandler.ReviewData{PR: "octo/hello#42", Reviewer: "octocat", Action: "request-changes"}, resp.Data)
	assert.Equal(t, `Please add "tests"`, tool.lastBody)
}

func TestReviewPR_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		reviewErr   error
		wantStatus  int
		wantMessage string
		wantError   string
		wantInvoked bool
	}{
		{
			name:        "invalid json",
			body:        `{`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
		{
			name:        "missing url",
			body:        `{"action":"approve"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Missing PR URL",
		},
		{
			name:        "invalid action",
			body:        `{"prUrl":"` + testPRURL + `","action":"close"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid action. Must be one of: approve, comment, request-changes",
		},
		{
			name:        "comment without text",
			body:        `{"prUrl":"` + testPRURL + `","action":"comment","comment":"  "}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "A comment is required when using the 'comment' action",
		},
		{
			name:        "gh fails",
			body:        `{"prUrl":"` + testPRURL + `","action":"approve"}`,
			reviewErr:   errors.New("Can not approve your own pull request"),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Failed to review PR",
			wantError:   "Can not approve your own pull request",
			wantInvoked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := authenticatedTool()
			tool.reviewErr = tt.reviewErr

			rec := doJSON(t, setupMux(tool), http.MethodPost, "/api/review-pr", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp httphandler.MessageResponse
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.wantInvoked, tool.reviewed)
		})
	}
}

func TestApprovePR_ForcesApprove(t *testing.T) {
	tool := authenticatedTool()
	body := `{"prUrl":"` + testPRURL + `","action":"comment"}`

	rec := doJSON(t, setupMux(tool), http.MethodPost, "/api/approve-pr", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ReviewActionApprove, tool.lastAction)
	assert.Empty(t, tool.lastBody)

	var resp httphandler.MessageResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "PR approved successfully", resp.Message)
}

func TestReviewPR_UnknownReviewer(t *testing.T) {
	tool := authenticatedTool()
	tool.userErr = errors.New("HTTP 502")
	tool.authStatusErr = errors.New("exit 1")

	rec := doJSON(t, setupMux(tool), http.MethodPost, "/api/review-pr", `{"prUrl":"`+testPRURL+`","action":"approve"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data httphandler.ReviewData `json:"data"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "unknown", resp.Data.Reviewer)
}

func TestMergePR(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantMessage  string
		wantStrategy model.MergeStrategy
	}{
		{
			name:         "defaults to squash",
			body:         `{"prUrl":"` + testPRURL + `","deleteBranch":true}`,
			wantStatus:   http.StatusOK,
			wantMessage:  "PR squash merged successfully",
			wantStrategy: model.MergeStrategySquash,
		},
		{
			name:         "rebase",
			body:         `{"prUrl":"` + testPRURL + `","strategy":"rebase"}`,
			wantStatus:   http.StatusOK,
			wantMessage:  "PR rebased and merged successfully",
			wantStrategy: model.MergeStrategyRebase,
		},
		{
			name:        "invalid strategy",
			body:        `{"prUrl":"` + testPRURL + `","strategy":"octopus"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid merge strategy. Must be one of: merge, squash, rebase",
		},
		{
			name:        "missing url",
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Missing PR URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := authenticatedTool()

			rec := doJSON(t, setupMux(tool), http.MethodPost, "/api/merge-pr", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp httphandler.MessageResponse
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantStrategy, tool.lastStrategy)
		})
	}
}

func TestMergePR_Data(t *testing.T) {
	rec := doJSON(t, setupMux(authenticatedTool()), http.MethodPost, "/api/merge-pr",
		`{"prUrl":"`+testPRURL+`","strategy":"merge","deleteBranch":true}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data httphandler.MergeData `json:"data"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, httphandler.MergeData{
		PR:            "octo/hello#42",
		User:          "octocat",
		Strategy:      "merge",
		BranchDeleted: true,
	}, resp.Data)
}

func TestDiagnostics_Healthy(t *testing.T) {
	rec := doJSON(t, setupMux(authenticatedTool()), http.MethodGet, "/api/diagnostics", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "test", resp["environment"])
	assert.NotEmpty(t, resp["go_version"])
	assert.NotEmpty(t, resp["timestamp"])
	assert.Equal(t, []any{}, resp["recommendations"])

	tests, ok := resp["tests"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"cli_installed", "auth_status", "api_access", "auth_scopes"} {
		check, ok := tests[key].(map[string]any)
		require.True(t, ok, key)
		assert.Equal(t, true, check["success"], key)
	}

	api := tests["api_access"].(map[string]any)
	assert.Equal(t, "octocat", api["username"])
	assert.Equal(t, map[string]any{"name": "The Octocat", "id": float64(1)}, api["user_data"])
}

func TestDiagnostics_CLIMissing(t *testing.T) {
	rec := doJSON(t, setupMux(&mockTool{versionErr: errors.New("not found")}), http.MethodGet, "/api/diagnostics", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.DiagnosticsResponse
	decodeJSON(t, rec, &resp)
	assert.False(t, resp.Tests.CLIInstalled.Success)
	assert.Nil(t, resp.Tests.AuthStatus)
	assert.Nil(t, resp.Tests.APIAccess)
	assert.Nil(t, resp.Tests.AuthScopes)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "https://cli.github.com/", resp.Recommendations[0].Link)
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, setupMux(&mockTool{}), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := doJSON(t, setupMux(&mockTool{}), http.MethodGet, "/api/review-pr", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
