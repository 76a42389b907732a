package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
	"github.com/ericfisherdev/prapprover/internal/domain/port/driven"
)

const notAuthenticatedMessage = `Not authenticated with GitHub CLI. Run "gh auth login" on the server.`

// identitySource resolves the session identity one way. Sources are tried in
// priority order and the first success wins.
type identitySource struct {
	name    string
	resolve func(ctx context.Context, tool driven.ReviewTool) (model.ReviewerIdentity, error)
}

var errNoUsername = errors.New("no username in gh auth status output")

// identitySources lists the structured query first; it is authoritative.
// Scraping gh auth status text is kept as a fallback for tokens that cannot
// call the user endpoint.
var identitySources = []identitySource{
	{name: "api-user", resolve: identityFromAPI},
	{name: "auth-status", resolve: identityFromAuthStatus},
}

func identityFromAPI(ctx context.Context, tool driven.ReviewTool) (model.ReviewerIdentity, error) {
	user, err := tool.CurrentUser(ctx)
	if err != nil {
		return model.ReviewerIdentity{}, err
	}
	return model.NewReviewerIdentity(user.Login, user.Name, user.AvatarURL), nil
}

func identityFromAuthStatus(ctx context.Context, tool driven.ReviewTool) (model.ReviewerIdentity, error) {
	status, err := tool.AuthStatus(ctx)
	if err != nil {
		return model.ReviewerIdentity{}, err
	}
	if status.Username == "" {
		return model.ReviewerIdentity{}, errNoUsername
	}
	return model.NewReviewerIdentity(status.Username, "", ""), nil
}

// IdentityResolver determines which account gh is acting as.
type IdentityResolver struct {
	tool    driven.ReviewTool
	sources []identitySource
	logger  *slog.Logger
}

// NewIdentityResolver creates an IdentityResolver using the default source order.
func NewIdentityResolver(tool driven.ReviewTool, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{
		tool:    tool,
		sources: identitySources,
		logger:  logger,
	}
}

// Resolve returns the current identity, or an ErrAuthentication error when
// no source produced one.
func (r *IdentityResolver) Resolve(ctx context.Context) (model.ReviewerIdentity, error) {
	var errs []error
	for _, src := range r.sources {
		identity, err := src.resolve(ctx, r.tool)
		if err == nil {
			r.logger.Debug("resolved gh identity", "username", identity.Username, "source", src.name)
			return identity, nil
		}
		r.logger.Debug("identity source failed", "source", src.name, "error", err)
		errs = append(errs, err)
	}
	return model.ReviewerIdentity{}, model.NewError(model.ErrAuthentication, notAuthenticatedMessage, errors.Join(errs...))
}

// ResolveOrUnknown is used after a successful write: failing to name the
// actor must not turn a completed review into an error.
func (r *IdentityResolver) ResolveOrUnknown(ctx context.Context) string {
	identity, err := r.Resolve(ctx)
	if err != nil {
		r.logger.Warn("could not determine acting user", "error", err)
		return model.UnknownReviewer
	}
	return identity.Username
}
