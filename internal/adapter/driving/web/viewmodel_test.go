package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

func TestSubmitDisabled(t *testing.T) {
	ready := reviewForm{
		URL:    "https://github.com/octo/hello/pull/42",
		Action: model.ReviewActionApprove,
		Loaded: true,
		State:  "OPEN",
	}

	tests := []struct {
		name   string
		modify func(f *reviewForm)
		want   bool
	}{
		{name: "ready approve", modify: func(*reviewForm) {}, want: false},
		{name: "approve ignores empty comment", modify: func(f *reviewForm) { f.Comment = "" }, want: false},
		{name: "no url", modify: func(f *reviewForm) { f.URL = "" }, want: true},
		{name: "unknown action", modify: func(f *reviewForm) { f.Action = "merge" }, want: true},
		{name: "comment blank", modify: func(f *reviewForm) { f.Action = model.ReviewActionComment; f.Comment = " \n" }, want: true},
		{name: "comment present", modify: func(f *reviewForm) { f.Action = model.ReviewActionComment; f.Comment = "nit" }, want: false},
		{name: "request changes blank", modify: func(f *reviewForm) { f.Action = model.ReviewActionRequestChanges }, want: true},
		{name: "no snapshot", modify: func(f *reviewForm) { f.Loaded = false }, want: true},
		{name: "closed", modify: func(f *reviewForm) { f.State = "CLOSED" }, want: true},
		{name: "merged", modify: func(f *reviewForm) { f.State = "MERGED" }, want: true},
		{name: "lowercase open", modify: func(f *reviewForm) { f.State = "open" }, want: false},
		{name: "draft", modify: func(f *reviewForm) { f.Draft = true }, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ready
			tt.modify(&f)
			assert.Equal(t, tt.want, submitDisabled(f))
		})
	}
}

func TestToControlsViewModel_Labels(t *testing.T) {
	tests := []struct {
		action      model.ReviewAction
		wantLabel   string
		wantComment string
		wantShow    bool
	}{
		{action: model.ReviewActionApprove, wantLabel: "Approve PR"},
		{action: model.ReviewActionComment, wantLabel: "Comment on PR", wantComment: "Comment", wantShow: true},
		{action: model.ReviewActionRequestChanges, wantLabel: "Request Changes", wantComment: "Change Request Comment", wantShow: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			c := toControlsViewModel(reviewForm{Action: tt.action})
			assert.Equal(t, tt.wantLabel, c.SubmitLabel)
			assert.Equal(t, tt.wantComment, c.CommentLabel)
			assert.Equal(t, tt.wantShow, c.ShowComment)
		})
	}
}

func TestToActionOptions(t *testing.T) {
	opts := toActionOptions(model.ReviewActionComment)

	require.Len(t, opts, 3)
	assert.Equal(t, "approve", opts[0].Value)
	assert.False(t, opts[0].Selected)
	assert.True(t, opts[1].Selected)
	assert.Equal(t, "Request Changes", opts[2].Label)
}

func TestToDetailsViewModel(t *testing.T) {
	tests := []struct {
		name        string
		snapshot    model.PullRequestSnapshot
		wantBadge   string
		wantClass   string
		wantWarning string
	}{
		{name: "open", snapshot: model.PullRequestSnapshot{State: model.PRStateOpen}, wantBadge: "OPEN", wantClass: "state-open"},
		{
			name:        "closed",
			snapshot:    model.PullRequestSnapshot{State: model.PRStateClosed},
			wantBadge:   "CLOSED",
			wantClass:   "state-closed",
			wantWarning: "This PR is closed and cannot be reviewed.",
		},
		{
			name:        "merged",
			snapshot:    model.PullRequestSnapshot{State: model.PRStateMerged},
			wantBadge:   "MERGED",
			wantClass:   "state-merged",
			wantWarning: "This PR is merged and cannot be reviewed.",
		},
		{
			name:        "draft",
			snapshot:    model.PullRequestSnapshot{State: model.PRStateOpen, IsDraft: true},
			wantBadge:   "DRAFT",
			wantClass:   "state-draft",
			wantWarning: "This PR is in draft state and cannot be reviewed yet.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := toDetailsViewModel(tt.snapshot)
			assert.True(t, d.Loaded)
			assert.Equal(t, tt.wantBadge, d.Badge)
			assert.Equal(t, tt.wantClass, d.BadgeClass)
			assert.Equal(t, tt.wantWarning, d.Warning)
		})
	}
}

func TestFormatCreated(t *testing.T) {
	assert.Equal(t, "Mar 9, 2025 17:30 UTC", formatCreated("2025-03-09T17:30:00Z"))
	assert.Equal(t, "Mar 9, 2025 17:30 UTC", formatCreated("2025-03-09T19:30:00+02:00"))
	assert.Equal(t, "yesterday", formatCreated("yesterday"))
}

func TestReviewSummary(t *testing.T) {
	ref := model.PullRequestReference{Owner: "octo", Repo: "hello", Number: 7}

	tests := []struct {
		action model.ReviewAction
		want   string
	}{
		{model.ReviewActionApprove, "Pull request octo/hello#7 was approved by octocat."},
		{model.ReviewActionComment, "Pull request octo/hello#7 was commented on by octocat."},
		{model.ReviewActionRequestChanges, "Pull request octo/hello#7 was requested changes by octocat."},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			got := reviewSummary(model.ReviewResult{Reference: ref, Reviewer: "octocat", Action: tt.action})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDiagnosticsViewModel(t *testing.T) {
	authenticated := true
	diag := model.Diagnostics{
		Timestamp:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Environment:  "production",
		GoVersion:    "go1.25.7",
		CLIInstalled: model.CheckResult{Success: true, Version: "gh version 2.62.0"},
		AuthStatus:   &model.CheckResult{Success: true, Authenticated: &authenticated, RawOutput: "Logged in to github.com"},
		APIAccess:    &model.CheckResult{Success: false, Error: "HTTP 401"},
		AuthScopes:   &model.CheckResult{Success: true, Scopes: []string{"gist", "read:org"}},
		Recommendations: []model.Recommendation{
			{Text: "Refresh", Command: "gh auth refresh"},
		},
	}

	out := toDiagnosticsViewModel(diag)

	assert.Equal(t, "2025-01-02T03:04:05Z", out.Timestamp)
	require.Len(t, out.Checks, 4)
	assert.Equal(t, "Installed - gh version 2.62.0", out.Checks[0].Summary)
	assert.Equal(t, "Authenticated", out.Checks[1].Summary)
	assert.Equal(t, "Failed - HTTP 401", out.Checks[2].Summary)
	assert.False(t, out.Checks[2].Success)
	assert.Equal(t, "Available: gist, read:org", out.Checks[3].Summary)
	assert.Equal(t, "Logged in to github.com", out.RawAuthOutput)
	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, "gh auth refresh", out.Recommendations[0].Command)
}
