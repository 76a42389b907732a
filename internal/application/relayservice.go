package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
	"github.com/ericfisherdev/prapprover/internal/domain/port/driven"
)

// toolMissingMessage is reported whenever gh cannot be executed.
const toolMissingMessage = "GitHub CLI is not installed or not in PATH"

// RelayService translates review actions into gh invocations. It holds no
// mutable state; every call re-runs the tool.
type RelayService struct {
	tool     driven.ReviewTool
	identity *IdentityResolver
	logger   *slog.Logger
}

// NewRelayService creates a RelayService over the given tool.
func NewRelayService(tool driven.ReviewTool, logger *slog.Logger) *RelayService {
	return &RelayService{
		tool:     tool,
		identity: NewIdentityResolver(tool, logger),
		logger:   logger,
	}
}

// CheckToolAvailability runs the version check. It never fails: a missing
// tool is reported in the returned status.
func (s *RelayService) CheckToolAvailability(ctx context.Context) model.ToolStatus {
	version, err := s.tool.Version(ctx)
	if err != nil {
		s.logger.Error("gh CLI check failed", "error", err)
		return model.ToolStatus{Installed: false, Error: toolMissingMessage}
	}
	return model.ToolStatus{Installed: true, Version: version}
}

// ListReviewers returns the identity gh is authenticated as. The result holds
// at most one element.
func (s *RelayService) ListReviewers(ctx context.Context) ([]model.ReviewerIdentity, error) {
	version, err := s.tool.Version(ctx)
	if err != nil {
		return nil, model.NewError(model.ErrToolUnavailable, toolMissingMessage, err)
	}
	s.logger.Debug("gh CLI available", "version", version)

	identity, err := s.identity.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return []model.ReviewerIdentity{identity}, nil
}

// GetPullRequestDetails fetches a fresh snapshot of the pull request at url.
func (s *RelayService) GetPullRequestDetails(ctx context.Context, url string) (model.PullRequestSnapshot, error) {
	if strings.TrimSpace(url) == "" {
		return model.PullRequestSnapshot{}, model.NewError(model.ErrInvalidReference, "Missing PR URL", nil)
	}

	ref, err := model.ParseReference(url)
	if err != nil {
		return model.PullRequestSnapshot{}, err
	}

	snapshot, err := s.tool.ViewPullRequest(ctx, ref)
	if err != nil {
		return model.PullRequestSnapshot{}, model.NewError(model.ErrToolExecution, "Failed to fetch PR details", err)
	}
	return snapshot, nil
}

// SubmitReview validates req and records the review through gh. Validation
// happens before any subprocess runs: reference, then action, then comment.
func (s *RelayService) SubmitReview(ctx context.Context, req model.ReviewRequest) (model.ReviewResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return model.ReviewResult{}, model.NewError(model.ErrInvalidReference, "Missing PR URL", nil)
	}

	ref, err := model.ParseReference(req.URL)
	if err != nil {
		return model.ReviewResult{}, err
	}

	if !req.Action.Valid() {
		return model.ReviewResult{}, model.NewError(model.ErrValidation,
			"Invalid action. Must be one of: approve, comment, request-changes", nil)
	}

	if req.Action.RequiresComment() && !req.HasComment() {
		return model.ReviewResult{}, model.NewError(model.ErrValidation,
			"A comment is required when using the '"+string(req.Action)+"' action", nil)
	}

	body := ""
	if req.Action.RequiresComment() {
		body = req.Comment
	}

	if err := s.tool.Review(ctx, ref, req.Action, body); err != nil {
		return model.ReviewResult{}, model.NewError(model.ErrToolExecution, "Failed to review PR", err)
	}

	return model.ReviewResult{
		Success:   true,
		Message:   "PR " + req.Action.PastTense() + " successfully",
		Reference: ref,
		Reviewer:  s.identity.ResolveOrUnknown(ctx),
		Action:    req.Action,
	}, nil
}

// MergePullRequest merges the pull request at req.URL. An empty strategy
// defaults to squash.
func (s *RelayService) MergePullRequest(ctx context.Context, req model.MergeRequest) (model.MergeResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return model.MergeResult{}, model.NewError(model.ErrInvalidReference, "Missing PR URL", nil)
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = model.DefaultMergeStrategy
	}
	if !strategy.Valid() {
		return model.MergeResult{}, model.NewError(model.ErrInvalidStrategy,
			"Invalid merge strategy. Must be one of: merge, squash, rebase", nil)
	}

	ref, err := model.ParseReference(req.URL)
	if err != nil {
		return model.MergeResult{}, err
	}

	if err := s.tool.Merge(ctx, ref, strategy, req.DeleteBranch); err != nil {
		return model.MergeResult{}, model.NewError(model.ErrToolExecution, "Failed to merge PR", err)
	}

	return model.MergeResult{
		Message:       "PR " + strategy.Description() + " successfully",
		Reference:     ref,
		User:          s.identity.ResolveOrUnknown(ctx),
		Strategy:      strategy,
		BranchDeleted: req.DeleteBranch,
	}, nil
}
