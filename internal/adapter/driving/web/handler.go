// Package web implements the HTML GUI driving adapter using templ components
// and HTMX fragments.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/prapprover/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/prapprover/internal/adapter/driving/web/templates/components"
	"github.com/ericfisherdev/prapprover/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/prapprover/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/prapprover/internal/application"
	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

const pageTitle = "GitHub PR Approver"

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	relay       *application.RelayService
	environment string
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(relay *application.RelayService, environment string, logger *slog.Logger) *Handler {
	return &Handler{
		relay:       relay,
		environment: environment,
		logger:      logger,
	}
}

// Home renders the page shell. Everything else arrives as fragments.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ensureCSRFCookie(w, r)
	h.render(w, r, "home", templates.Layout(pageTitle, pages.Home()))
}

// Status answers the checking-tool loader.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.relay.CheckToolAvailability(r.Context())
	if !status.Installed {
		h.render(w, r, "status", components.ToolUnavailable(vm.AppViewModel{
			State: vm.StateToolUnavailable,
			Error: status.Error,
		}))
		return
	}

	h.render(w, r, "status", components.CheckingAuth(status.Version))
}

// Auth answers the checking-auth loader with either the login instructions
// or the review form.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	status := h.relay.CheckToolAvailability(r.Context())
	if !status.Installed {
		h.render(w, r, "auth", components.ToolUnavailable(vm.AppViewModel{
			State: vm.StateToolUnavailable,
			Error: status.Error,
		}))
		return
	}

	reviewers, err := h.relay.ListReviewers(r.Context())
	if err != nil || len(reviewers) == 0 {
		if errors.Is(err, model.ErrToolUnavailable) {
			h.render(w, r, "auth", components.ToolUnavailable(vm.AppViewModel{
				State: vm.StateToolUnavailable,
				Error: model.UserMessage(err, status.Error),
			}))
			return
		}
		h.logger.Warn("gh CLI not authenticated", "error", err)
		h.render(w, r, "auth", components.Unauthenticated(vm.AppViewModel{
			State: vm.StateUnauthenticated,
			Error: model.UserMessage(err, ""),
		}))
		return
	}

	form := reviewForm{Action: model.ReviewActionApprove}
	h.render(w, r, "auth", components.ReviewForm(vm.AppViewModel{
		State:    vm.StateReady,
		Version:  status.Version,
		Reviewer: toReviewerViewModel(reviewers[0]),
		Form: vm.FormViewModel{
			Actions:  toActionOptions(form.Action),
			Controls: toControlsViewModel(form),
		},
	}))
}

// PRDetails renders the PR card for the URL in the form. The lookup only
// runs when the URL looks like a pull request link.
func (h *Handler) PRDetails(w http.ResponseWriter, r *http.Request) {
	form := parseReviewForm(r)

	var details vm.DetailsViewModel
	if model.MatchesReferencePattern(form.URL) {
		snapshot, err := h.relay.GetPullRequestDetails(r.Context(), form.URL)
		if err != nil {
			h.logger.Warn("failed to fetch PR details", "url", form.URL, "error", err)
			details.Error = model.UserMessage(err, "Failed to fetch PR details")
		} else {
			details = toDetailsViewModel(snapshot)
		}
	}

	controls := toControlsViewModel(form.withSnapshot(details))
	h.render(w, r, "pr details", components.DetailsFragment(details, controls))
}

// Controls recomputes the comment field and submit button. No subprocess runs.
func (h *Handler) Controls(w http.ResponseWriter, r *http.Request) {
	form := parseReviewForm(r)
	controls := toControlsViewModel(form)
	controls.IncludeCommentField = r.Header.Get("HX-Trigger") == "action"
	h.render(w, r, "controls", components.Controls(controls))
}

// csrfFailureMessage is shown when a submission lacks a matching token. The
// fragment is returned with 200 so HTMX swaps it in.
const csrfFailureMessage = "Your session token is missing or expired. Please submit again."

// Review submits the review form.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	form := parseReviewForm(r)
	if !validCSRF(r) {
		h.logger.Warn("review rejected: invalid CSRF token", "url", form.URL)
		ensureCSRFCookie(w, r)
		h.render(w, r, "review result", components.Result(vm.ResultViewModel{
			Success:  false,
			Message:  csrfFailureMessage,
			Controls: toControlsViewModel(form),
		}))
		return
	}

	result, err := h.relay.SubmitReview(r.Context(), model.ReviewRequest{
		URL:     form.URL,
		Action:  form.Action,
		Comment: form.Comment,
	})
	if err != nil {
		h.logger.Warn("review submission failed", "url", form.URL, "action", form.Action, "error", err)
		res := vm.ResultViewModel{
			Success:  false,
			Message:  model.UserMessage(err, "Failed to review PR"),
			Controls: toControlsViewModel(form),
		}
		if errors.Is(err, model.ErrToolExecution) {
			res.Detail = model.Detail(err)
		}
		h.render(w, r, "review result", components.Result(res))
		return
	}

	h.logger.Info("PR reviewed",
		"pr", result.Reference.String(),
		"action", result.Action,
		"reviewer", result.Reviewer,
	)

	if form.Action.RequiresComment() {
		form.Comment = ""
	}
	h.render(w, r, "review result", components.Result(vm.ResultViewModel{
		Success:  true,
		Message:  result.Message,
		Summary:  reviewSummary(result),
		Refetch:  true,
		Controls: toControlsViewModel(form),
	}))
}

// Diagnostics runs every environment check and renders the results.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	diag := h.relay.RunDiagnostics(r.Context(), h.environment)
	h.render(w, r, "diagnostics", components.Diagnostics(toDiagnosticsViewModel(diag)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render "+name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
