package web_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prapprover/internal/adapter/driving/web"
	"github.com/ericfisherdev/prapprover/internal/application"
	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

const testPRURL = "https://github.com/octo/hello/pull/42"

type mockTool struct {
	versionErr    error
	authStatusErr error
	userErr       error
	snapshot      model.PullRequestSnapshot
	snapshotErr   error
	reviewErr     error

	viewCalls   int
	reviewCalls int
	lastBody    string
}

func (m *mockTool) Version(_ context.Context) (string, error) {
	if m.versionErr != nil {
		return "", m.versionErr
	}
	return "gh version 2.62.0 (2024-11-14)", nil
}

func (m *mockTool) AuthStatus(_ context.Context) (model.AuthStatus, error) {
	if m.authStatusErr != nil {
		return model.AuthStatus{}, m.authStatusErr
	}
	return model.AuthStatus{LoggedIn: true, Username: "octocat", Scopes: []string{"repo"}}, nil
}

func (m *mockTool) CurrentUser(_ context.Context) (model.APIUser, error) {
	if m.userErr != nil {
		return model.APIUser{}, m.userErr
	}
	return model.APIUser{ID: 1, Login: "octocat", Name: "The Octocat"}, nil
}

func (m *mockTool) ViewPullRequest(_ context.Context, _ model.PullRequestReference) (model.PullRequestSnapshot, error) {
	m.viewCalls++
	return m.snapshot, m.snapshotErr
}

func (m *mockTool) Review(_ context.Context, _ model.PullRequestReference, _ model.ReviewAction, body string) error {
	m.reviewCalls++
	m.lastBody = body
	return m.reviewErr
}

func (m *mockTool) Merge(_ context.Context, _ model.PullRequestReference, _ model.MergeStrategy, _ bool) error {
	return nil
}

func openPR() model.PullRequestSnapshot {
	return model.PullRequestSnapshot{
		Title:     "Add <feature>",
		State:     model.PRStateOpen,
		Author:    model.PullRequestAuthor{Login: "monalisa"},
		CreatedAt: "2025-01-02T03:04:05Z",
		Body:      "Fixes **everything**",
		URL:       testPRURL,
	}
}

func setupMux(tool *mockTool) http.Handler {
	relay := application.NewRelayService(tool, slog.Default())
	h := web.NewHandler(relay, "test", slog.Default())
	mux := http.NewServeMux()
	web.RegisterRoutes(mux, h)
	return mux
}

func get(t *testing.T, handler http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func postReview(t *testing.T, handler http.Handler, form url.Values, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/app/review", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
		req.Header.Set("X-CSRF-Token", token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// submitButtonDisabled extracts the submit button's opening tag and reports
// whether it carries the disabled attribute.
func submitButtonDisabled(t *testing.T, body string) bool {
	t.Helper()
	start := strings.Index(body, `id="submit-button"`)
	require.NotEqual(t, -1, start, "submit button not rendered in: %s", body)
	end := strings.Index(body[start:], ">")
	require.NotEqual(t, -1, end)
	return strings.Contains(body[start:start+end], " disabled")
}

func TestHome(t *testing.T) {
	rec := get(t, setupMux(&mockTool{}), "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>GitHub PR Approver</title>")
	assert.Contains(t, body, `data-state="checking-tool"`)
	assert.Contains(t, body, `hx-get="/app/status"`)

	var csrf *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			csrf = c
		}
	}
	require.NotNil(t, csrf)
	assert.Len(t, csrf.Value, 26)
}

func TestStatus(t *testing.T) {
	t.Run("gh missing shows setup instructions", func(t *testing.T) {
		rec := get(t, setupMux(&mockTool{versionErr: errors.New("not found")}), "/app/status", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `data-state="tool-unavailable"`)
		assert.Contains(t, body, "GitHub CLI Not Available")
		assert.Contains(t, body, "Error: GitHub CLI is not installed or not in PATH")
		assert.Contains(t, body, "Run Diagnostics")
		assert.NotContains(t, body, `id="review-form"`)
	})

	t.Run("gh present moves on to auth", func(t *testing.T) {
		rec := get(t, setupMux(&mockTool{}), "/app/status", nil)

		body := rec.Body.String()
		assert.Contains(t, body, `data-state="checking-auth"`)
		assert.Contains(t, body, `hx-get="/app/auth"`)
		assert.Contains(t, body, "gh version 2.62.0 (2024-11-14)")
	})
}

func TestAuth(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		tool := &mockTool{userErr: errors.New("exit 4"), authStatusErr: errors.New("exit 1")}
		rec := get(t, setupMux(tool), "/app/auth", nil)

		body := rec.Body.String()
		assert.Contains(t, body, `data-state="unauthenticated"`)
		assert.Contains(t, body, "GitHub CLI Not Authenticated")
		assert.Contains(t, body, "<code>gh auth login</code>")
	})

	t.Run("ready", func(t *testing.T) {
		rec := get(t, setupMux(&mockTool{}), "/app/auth", nil)

		body := rec.Body.String()
		assert.Contains(t, body, `data-state="ready"`)
		assert.Contains(t, body, `id="review-form"`)
		assert.Contains(t, body, "The Octocat")
		assert.Contains(t, body, `hx-trigger="input changed delay:500ms"`)
		assert.Contains(t, body, `<option value="approve" selected>Approve</option>`)
		assert.Contains(t, body, "Approve PR")
		assert.True(t, submitButtonDisabled(t, body), "empty form must not be submittable")
	})
}

func TestPRDetails(t *testing.T) {
	tests := []struct {
		name         string
		snapshot     model.PullRequestSnapshot
		wantBadge    string
		wantWarning  string
		wantDisabled bool
	}{
		{name: "open", snapshot: openPR(), wantBadge: "OPEN", wantDisabled: false},
		{
			name: "merged",
			snapshot: func() model.PullRequestSnapshot {
				s := openPR()
				s.State = model.PRStateMerged
				return s
			}(),
			wantBadge:    "MERGED",
			wantWarning:  "This PR is merged and cannot be reviewed.",
			wantDisabled: true,
		},
		{
			name: "draft",
			snapshot: func() model.PullRequestSnapshot {
				s := openPR()
				s.IsDraft = true
				return s
			}(),
			wantBadge:    "DRAFT",
			wantWarning:  "This PR is in draft state and cannot be reviewed yet.",
			wantDisabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &mockTool{snapshot: tt.snapshot}
			path := "/app/pr-details?action=approve&url=" + url.QueryEscape(testPRURL)

			rec := get(t, setupMux(tool), path, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Equal(t, 1, tool.viewCalls)
			assert.Contains(t, body, "Add &lt;feature&gt;")
			assert.Contains(t, body, ">"+tt.wantBadge+"</div>")
			assert.Contains(t, body, "<strong>everything</strong>")
			assert.Contains(t, body, "Jan 2, 2025 03:04 UTC")
			assert.Contains(t, body, `hx-swap-oob="innerHTML"`)
			if tt.wantWarning != "" {
				assert.Contains(t, body, tt.wantWarning)
			}
			assert.Equal(t, tt.wantDisabled, submitButtonDisabled(t, body))
		})
	}
}

func TestPRDetails_SkipsLookupForNonMatchingURL(t *testing.T) {
	tool := &mockTool{snapshot: openPR()}

	rec := get(t, setupMux(tool), "/app/pr-details?url="+url.QueryEscape("https://github.com/octo/hel"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, tool.viewCalls)
	assert.NotContains(t, rec.Body.String(), "pr-details\"><input")
	assert.True(t, submitButtonDisabled(t, rec.Body.String()))
}

func TestPRDetails_LookupFailure(t *testing.T) {
	tool := &mockTool{snapshotErr: errors.New("Could not resolve to a PullRequest")}

	rec := get(t, setupMux(tool), "/app/pr-details?url="+url.QueryEscape(testPRURL), nil)

	body := rec.Body.String()
	assert.Contains(t, body, `class="pr-error"`)
	assert.Contains(t, body, "Failed to fetch PR details")
	assert.True(t, submitButtonDisabled(t, body))
}

func TestControls(t *testing.T) {
	loaded := "&pr_loaded=true&pr_state=OPEN&url=" + url.QueryEscape(testPRURL)

	tests := []struct {
		name         string
		query        string
		trigger      string
		wantDisabled bool
		wantComment  bool
		wantLabel    string
	}{
		{name: "approve on open PR", query: "action=approve" + loaded, wantLabel: "Approve PR"},
		{name: "comment without text", query: "action=comment" + loaded, trigger: "action", wantDisabled: true, wantComment: true, wantLabel: "Comment on PR"},
		{name: "comment with text", query: "action=comment&comment=nit" + loaded, trigger: "comment", wantLabel: "Comment on PR"},
		{name: "request changes blank", query: "action=request-changes&comment=%20%20" + loaded, wantDisabled: true, wantLabel: "Request Changes"},
		{name: "no PR loaded", query: "action=approve&url=" + url.QueryEscape(testPRURL), wantDisabled: true, wantLabel: "Approve PR"},
		{name: "no url", query: "action=approve&pr_loaded=true&pr_state=OPEN", wantDisabled: true, wantLabel: "Approve PR"},
		{name: "closed PR", query: "action=approve&pr_loaded=true&pr_state=CLOSED&url=" + url.QueryEscape(testPRURL), wantDisabled: true, wantLabel: "Approve PR"},
		{name: "draft PR", query: "action=approve&pr_draft=true" + loaded, wantDisabled: true, wantLabel: "Approve PR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &mockTool{}
			headers := map[string]string{}
			if tt.trigger != "" {
				headers["HX-Trigger"] = tt.trigger
			}

			rec := get(t, setupMux(tool), "/app/controls?"+tt.query, headers)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Equal(t, tt.wantDisabled, submitButtonDisabled(t, body))
			assert.Contains(t, body, tt.wantLabel)
			assert.Equal(t, tt.wantComment, strings.Contains(body, `<textarea id="comment"`))
			assert.Equal(t, 0, tool.viewCalls+tool.reviewCalls, "controls must not invoke gh")
		})
	}
}

func TestReview_RequiresCSRF(t *testing.T) {
	tool := &mockTool{}
	form := url.Values{"url": {testPRURL}, "action": {"approve"}}

	rec := postReview(t, setupMux(tool), form, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, tool.reviewCalls)
	body := rec.Body.String()
	assert.Contains(t, body, `data-success="false"`)
	assert.Contains(t, body, "Your session token is missing or expired. Please submit again.")
	assert.Contains(t, body, `id="submit-area"`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "csrf_token", cookies[0].Name)
}

func TestReview_MismatchedCSRF(t *testing.T) {
	tool := &mockTool{}
	form := url.Values{"url": {testPRURL}, "action": {"approve"}}
	req := httptest.NewRequest(http.MethodPost, "/app/review", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "cookie-token"})
	req.Header.Set("X-CSRF-Token", "other-token")
	rec := httptest.NewRecorder()

	setupMux(tool).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, tool.reviewCalls)
	assert.Contains(t, rec.Body.String(), `data-success="false"`)
	assert.Empty(t, rec.Result().Cookies())
}

func TestReview_Success(t *testing.T) {
	tool := &mockTool{}
	form := url.Values{
		"url":       {testPRURL},
		"action":    {"request-changes"},
		"comment":   {`Rename "foo"`},
		"pr_loaded": {"true"},
		"pr_state":  {"OPEN"},
	}

	rec := postReview(t, setupMux(tool), form, "tok")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, `Rename "foo"`, tool.lastBody)
	assert.Contains(t, body, `data-state="result"`)
	assert.Contains(t, body, `data-success="true"`)
	assert.Contains(t, body, "PR requested changes on successfully")
	assert.Contains(t, body, "Pull request octo/hello#42 was requested changes by octocat.")
	assert.Contains(t, body, `hx-trigger="load delay:1s"`)
	assert.Contains(t, body, `<textarea id="comment"`)
	assert.NotContains(t, body, "Rename &#34;foo&#34;", "comment must be cleared after success")
	assert.True(t, submitButtonDisabled(t, body), "cleared comment disables submit again")
}

func TestReview_Failure(t *testing.T) {
	tests := []struct {
		name        string
		form        url.Values
		reviewErr   error
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "comment missing",
			form:        url.Values{"url": {testPRURL}, "action": {"comment"}},
			wantMessage: "A comment is required when using the &#39;comment&#39; action",
		},
		{
			name:        "gh rejects",
			form:        url.Values{"url": {testPRURL}, "action": {"approve"}},
			reviewErr:   errors.New("Can not approve your own pull request"),
			wantMessage: "Failed to review PR",
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &mockTool{reviewErr: tt.reviewErr}

			rec := postReview(t, setupMux(tool), tt.form, "tok")

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, `data-success="false"`)
			assert.Contains(t, body, tt.wantMessage)
			assert.NotContains(t, body, `hx-trigger="load delay:1s"`)
			assert.Equal(t, tt.wantCalls, tool.reviewCalls)
		})
	}
}

func TestDiagnostics(t *testing.T) {
	t.Run("gh missing", func(t *testing.T) {
		rec := get(t, setupMux(&mockTool{versionErr: errors.New("executable file not found")}), "/app/diagnostics", nil)

		body := rec.Body.String()
		assert.Contains(t, body, "Diagnostic Results")
		assert.Contains(t, body, "Not installed - executable file not found")
		assert.NotContains(t, body, "Authentication Status")
		assert.Contains(t, body, `href="https://cli.github.com/"`)
	})

	t.Run("healthy", func(t *testing.T) {
		rec := get(t, setupMux(&mockTool{}), "/app/diagnostics", nil)

		body := rec.Body.String()
		assert.Contains(t, body, "Working - Authenticated as octocat")
		assert.Contains(t, body, "Available: repo")
		assert.Contains(t, body, "No problems detected.")
	})
}

func TestStaticAssets(t *testing.T) {
	for _, path := range []string{"/static/app.css", "/static/csrf.js"} {
		rec := get(t, setupMux(&mockTool{}), path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
