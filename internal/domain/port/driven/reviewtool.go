package driven

import (
	"context"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// ReviewTool defines the driven port for the external code-review CLI.
// Every method runs the tool once and waits for it to exit; nothing is cached.
type ReviewTool interface {
	// Version returns the tool's version banner. An error means the tool
	// could not be executed at all.
	Version(ctx context.Context) (string, error)

	// AuthStatus returns the parsed session status. A non-nil error is
	// returned when the tool exits non-zero (typically: not logged in);
	// the returned status still carries whatever output was produced.
	AuthStatus(ctx context.Context) (model.AuthStatus, error)

	// CurrentUser queries the authenticated user through the tool's
	// structured API passthrough.
	CurrentUser(ctx context.Context) (model.APIUser, error)

	// ViewPullRequest fetches a fresh snapshot of the referenced pull request.
	ViewPullRequest(ctx context.Context, ref model.PullRequestReference) (model.PullRequestSnapshot, error)

	// Review records a review. body is ignored for approvals.
	Review(ctx context.Context, ref model.PullRequestReference, action model.ReviewAction, body string) error

	// Merge merges the pull request with the given strategy.
	Merge(ctx context.Context, ref model.PullRequestReference, strategy model.MergeStrategy, deleteBranch bool) error
}
