package application_test

import (
	"context"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// mockTool implements driven.ReviewTool and records which methods ran.
type mockTool struct {
	version    string
	versionErr error

	authStatus    model.AuthStatus
	authStatusErr error

	user    model.APIUser
	userErr error

	snapshot    model.PullRequestSnapshot
	snapshotErr error

	reviewErr error
	mergeErr  error

	calls []string

	lastRef          model.PullRequestReference
	lastAction       model.ReviewAction
	lastBody         string
	lastStrategy     model.MergeStrategy
	lastDeleteBranch bool
}

func (m *mockTool) Version(_ context.Context) (string, error) {
	m.calls = append(m.calls, "version")
	return m.version, m.versionErr
}

func (m *mockTool) AuthStatus(_ context.Context) (model.AuthStatus, error) {
	m.calls = append(m.calls, "auth-status")
	return m.authStatus, m.authStatusErr
}

func (m *mockTool) CurrentUser(_ context.Context) (model.APIUser, error) {
	m.calls = append(m.calls, "current-user")
	return m.user, m.userErr
}

func (m *mockTool) ViewPullRequest(_ context.Context, ref model.PullRequestReference) (model.PullRequestSnapshot, error) {
	m.calls = append(m.calls, "view")
	m.lastRef = ref
	return m.snapshot, m.snapshotErr
}

func (m *mockTool) Review(_ context.Context, ref model.PullRequestReference, action model.ReviewAction, body string) error {
	m.calls = append(m.calls, "review")
	m.lastRef = ref
	m.lastAction = action
	m.lastBody = body
	return m.reviewErr
}

func (m *mockTool) Merge(_ context.Context, ref model.PullRequestReference, strategy model.MergeStrategy, deleteBranch bool) error {
	m.calls = append(m.calls, "merge")
	m.lastRef = ref
	m.lastStrategy = strategy
	m.lastDeleteBranch = deleteBranch
	return m.mergeErr
}

// ran reports whether name appears in the recorded calls.
func (m *mockTool) ran(name string) bool {
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

// healthyTool returns a mock that is installed and authenticated as octocat.
func healthyTool() *mockTool {
	return &mockTool{
		version: "gh version 2.62.0 (2024-11-14)",
		authStatus: model.AuthStatus{
			Raw:      "Logged in to github.com account octocat (keyring)\nToken scopes: 'repo', 'read:org'",
			LoggedIn: true,
			Username: "octocat",
			Scopes:   []string{"repo", "read:org"},
		},
		user: model.APIUser{ID: 583231, Login: "octocat", Name: "The Octocat", AvatarURL: "https://avatars.example/u/1"},
		snapshot: model.PullRequestSnapshot{
			Title:  "Add feature",
			State:  model.PRStateOpen,
			Author: model.PullRequestAuthor{Login: "monalisa"},
			URL:    "https://github.com/octo/hello/pull/42",
		},
	}
}
