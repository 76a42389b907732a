package application

import (
	"context"
	"runtime"
	"time"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// requiredScope is the token scope gh needs to review pull requests.
const requiredScope = "repo"

// RunDiagnostics runs each sub-check independently and never fails; failures
// are captured in the returned bundle. Checks that need gh are skipped
// entirely when gh is not installed.
func (s *RelayService) RunDiagnostics(ctx context.Context, environment string) model.Diagnostics {
	diag := model.Diagnostics{
		Timestamp:   time.Now().UTC(),
		Environment: environment,
		GoVersion:   runtime.Version(),
	}

	version, err := s.tool.Version(ctx)
	if err != nil {
		diag.CLIInstalled = model.CheckResult{Success: false, Error: err.Error()}
		diag.Recommendations = Recommend(diag)
		return diag
	}
	diag.CLIInstalled = model.CheckResult{Success: true, Version: version}

	diag.AuthStatus = s.checkAuthStatus(ctx)
	diag.APIAccess = s.checkAPIAccess(ctx)
	diag.AuthScopes = s.checkAuthScopes(ctx)
	diag.Recommendations = Recommend(diag)

	return diag
}

func (s *RelayService) checkAuthStatus(ctx context.Context) *model.CheckResult {
	status, err := s.tool.AuthStatus(ctx)
	if err != nil {
		notAuthenticated := false
		return &model.CheckResult{Success: false, Authenticated: &notAuthenticated, Error: err.Error()}
	}
	authenticated := status.LoggedIn
	return &model.CheckResult{Success: true, Authenticated: &authenticated, RawOutput: status.Raw}
}

func (s *RelayService) checkAPIAccess(ctx context.Context) *model.CheckResult {
	user, err := s.tool.CurrentUser(ctx)
	if err != nil {
		return &model.CheckResult{Success: false, Error: err.Error()}
	}
	return &model.CheckResult{Success: true, Username: user.Login, Name: user.Name, UserID: user.ID}
}

func (s *RelayService) checkAuthScopes(ctx context.Context) *model.CheckResult {
	status, err := s.tool.AuthStatus(ctx)
	if err != nil {
		return &model.CheckResult{Success: false, Error: err.Error()}
	}
	if status.Scopes == nil {
		return &model.CheckResult{Success: false, Error: "gh auth status did not report token scopes"}
	}
	return &model.CheckResult{Success: true, Scopes: status.Scopes}
}

// Recommend derives remediation steps from the failed checks in diag.
func Recommend(diag model.Diagnostics) []model.Recommendation {
	recs := []model.Recommendation{}

	if !diag.CLIInstalled.Success {
		recs = append(recs, model.Recommendation{
			Text: "Install GitHub CLI following the instructions at https://cli.github.com/",
			Link: "https://cli.github.com/",
		})
	}

	if diag.CLIInstalled.Success && !diag.IsAuthenticated() {
		recs = append(recs, model.Recommendation{
			Text:    "Authenticate with GitHub CLI and follow the prompts",
			Command: "gh auth login",
		})
	}

	if diag.CLIInstalled.Success && diag.IsAuthenticated() && (diag.APIAccess == nil || !diag.APIAccess.Success) {
		recs = append(recs, model.Recommendation{
			Text:    "Your authentication seems incomplete. Refresh your token",
			Command: "gh auth refresh",
		})
	}

	if diag.AuthScopes != nil && diag.AuthScopes.Success && !diag.HasScope(requiredScope) {
		recs = append(recs, model.Recommendation{
			Text:    "Your authentication is missing the 'repo' scope needed for PR approvals",
			Command: "gh auth refresh -s repo",
		})
	}

	return recs
}
