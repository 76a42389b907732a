// Package ghcli implements the ReviewTool port by running the GitHub CLI.
package ghcli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
	"github.com/ericfisherdev/prapprover/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewTool = (*Client)(nil)

// Client implements driven.ReviewTool on top of a Runner.
type Client struct {
	runner Runner
	logger *slog.Logger
}

// NewClient creates a Client that executes gh through runner.
func NewClient(runner Runner, logger *slog.Logger) *Client {
	return &Client{
		runner: runner,
		logger: logger,
	}
}

// Version runs gh --version and returns the first line of its output,
// e.g. "gh version 2.62.0 (2024-11-14)".
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := c.runner.Run(ctx, "--version")
	if err != nil {
		return "", commandError([]string{"--version"}, stderr, err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(stdout)), "\n")
	return strings.TrimSpace(line), nil
}

// AuthStatus runs gh auth status. Depending on the gh release the report is
// written to stdout or stderr, so both streams are parsed.
func (c *Client) AuthStatus(ctx context.Context) (model.AuthStatus, error) {
	args := []string{"auth", "status"}
	stdout, stderr, err := c.runner.Run(ctx, args...)

	raw := strings.TrimSpace(joinOutput(stdout, stderr))
	status := model.AuthStatus{
		Raw:      raw,
		LoggedIn: strings.Contains(raw, "Logged in"),
		Scopes:   ParseScopes(raw),
	}
	if username, strategy, ok := ExtractUsername(raw); ok {
		status.Username = username
		c.logger.Debug("extracted gh username", "username", username, "strategy", strategy)
	}

	if err != nil {
		status.LoggedIn = false
		return status, commandError(args, stderr, err)
	}
	return status, nil
}

// CurrentUser runs gh api user. The response is the REST user object, which
// is decoded with go-github's User type.
func (c *Client) CurrentUser(ctx context.Context) (model.APIUser, error) {
	args := []string{"api", "user"}
	stdout, stderr, err := c.runner.Run(ctx, args...)
	if err != nil {
		return model.APIUser{}, commandError(args, stderr, err)
	}

	var user gh.User
	if err := json.Unmarshal(stdout, &user); err != nil {
		return model.APIUser{}, fmt.Errorf("parsing gh api user output: %w", err)
	}
	if user.GetLogin() == "" {
		return model.APIUser{}, fmt.Errorf("gh api user returned no login")
	}

	return model.APIUser{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ViewPullRequest runs gh pr view with a JSON field list and decodes the result.
func (c *Client) ViewPullRequest(ctx context.Context, ref model.PullRequestReference) (model.PullRequestSnapshot, error) {
	args := viewArgs(ref)
	stdout, stderr, err := c.runner.Run(ctx, args...)
	if err != nil {
		return model.PullRequestSnapshot{}, commandError(args, stderr, err)
	}
	if len(stderr) > 0 {
		c.logger.Warn("gh pr view wrote to stderr", "pr", ref.String(), "stderr", strings.TrimSpace(string(stderr)))
	}

	var snapshot model.PullRequestSnapshot
	if err := json.Unmarshal(stdout, &snapshot); err != nil {
		return model.PullRequestSnapshot{}, fmt.Errorf("parsing gh pr view output for %s: %w", ref, err)
	}
	return snapshot, nil
}

// Review runs gh pr review with the flag set selected by action.
func (c *Client) Review(ctx context.Context, ref model.PullRequestReference, action model.ReviewAction, body string) error {
	args, err := reviewArgs(ref, action, body)
	if err != nil {
		return err
	}

	stdout, stderr, err := c.runner.Run(ctx, args...)
	if err != nil {
		return commandError(args[:2], stderr, err)
	}

	c.logger.Info("review submitted", "pr", ref.String(), "action", action, "output", strings.TrimSpace(string(stdout)))
	if len(stderr) > 0 {
		c.logger.Warn("gh pr review wrote to stderr", "pr", ref.String(), "stderr", strings.TrimSpace(string(stderr)))
	}
	return nil
}

// Merge runs gh pr merge with the flag for strategy.
func (c *Client) Merge(ctx context.Context, ref model.PullRequestReference, strategy model.MergeStrategy, deleteBranch bool) error {
	args, err := mergeArgs(ref, strategy, deleteBranch)
	if err != nil {
		return err
	}

	stdout, stderr, err := c.runner.Run(ctx, args...)
	if err != nil {
		return commandError(args[:2], stderr, err)
	}

	c.logger.Info("pull request merged", "pr", ref.String(), "strategy", strategy, "output", strings.TrimSpace(string(stdout)))
	if len(stderr) > 0 {
		c.logger.Warn("gh pr merge wrote to stderr", "pr", ref.String(), "stderr", strings.TrimSpace(string(stderr)))
	}
	return nil
}

func viewArgs(ref model.PullRequestReference) []string {
	return []string{
		"pr", "view", strconv.Itoa(ref.Number),
		"--repo", ref.FullName(),
		"--json", model.SnapshotFields,
	}
}

// reviewArgs builds the gh pr review argument vector. The comment is a single
// argument, so quotes and other shell metacharacters need no escaping.
func reviewArgs(ref model.PullRequestReference, action model.ReviewAction, body string) ([]string, error) {
	args := []string{"pr", "review", strconv.Itoa(ref.Number), "--repo", ref.FullName()}

	switch action {
	case model.ReviewActionApprove:
		args = append(args, "--approve")
	case model.ReviewActionComment:
		args = append(args, "--comment", "--body", body)
	case model.ReviewActionRequestChanges:
		args = append(args, "--request-changes", "--body", body)
	default:
		return nil, fmt.Errorf("unsupported review action %q", action)
	}
	return args, nil
}

func mergeArgs(ref model.PullRequestReference, strategy model.MergeStrategy, deleteBranch bool) ([]string, error) {
	args := []string{"pr", "merge", strconv.Itoa(ref.Number), "--repo", ref.FullName()}

	switch strategy {
	case model.MergeStrategyMerge:
		args = append(args, "--merge")
	case model.MergeStrategySquash:
		args = append(args, "--squash")
	case model.MergeStrategyRebase:
		args = append(args, "--rebase")
	default:
		return nil, fmt.Errorf("unsupported merge strategy %q", strategy)
	}

	if deleteBranch {
		args = append(args, "--delete-branch")
	}
	return args, nil
}

// commandError wraps a gh failure with the command name and the first line
// gh wrote to stderr, which is usually the actionable part.
func commandError(args []string, stderr []byte, err error) error {
	name := "gh " + strings.Join(args, " ")
	if msg := firstLine(stderr); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}

func firstLine(b []byte) string {
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

func joinOutput(stdout, stderr []byte) string {
	switch {
	case len(stdout) == 0:
		return string(stderr)
	case len(stderr) == 0:
		return string(stdout)
	default:
		return string(stdout) + "\n" + string(stderr)
	}
}
