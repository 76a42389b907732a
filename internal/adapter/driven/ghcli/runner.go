package ghcli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	gh "github.com/cli/go-gh/v2"
)

// Runner executes the gh binary with a discrete argument vector. No shell is
// involved, so arguments reach gh exactly as given.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs gh through go-gh, which locates the binary via GH_PATH or PATH.
type ExecRunner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecRunner creates an ExecRunner. A zero timeout leaves each call
// bounded only by ctx.
func NewExecRunner(timeout time.Duration, logger *slog.Logger) *ExecRunner {
	return &ExecRunner{timeout: timeout, logger: logger}
}

// Run executes gh and returns its captured output.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, err := gh.ExecContext(ctx, args...)

	r.logger.Debug("gh executed",
		"command", subcommand(args),
		"duration", time.Since(start).Round(time.Millisecond),
		"failed", err != nil,
	)

	if err != nil && isNotInstalled(err) {
		return stdout.Bytes(), stderr.Bytes(), errors.Join(ErrNotInstalled, err)
	}
	if err != nil && stderr.Len() > 0 {
		r.logger.Warn("gh reported an error",
			"command", subcommand(args),
			"stderr", strings.TrimSpace(stderr.String()),
		)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// ErrNotInstalled is returned when the gh executable cannot be found.
var ErrNotInstalled = errors.New("gh executable not found")

func isNotInstalled(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// subcommand returns at most the first two arguments, which name the gh
// command without leaking free text such as review bodies into logs.
func subcommand(args []string) string {
	n := min(len(args), 2)
	if n == 2 && strings.HasPrefix(args[1], "-") {
		n = 1
	}
	return strings.Join(args[:n], " ")
}
