package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	vm "github.com/ericfisherdev/prapprover/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

// reviewForm is the review form as posted by HTMX. The PR card contributes
// the hidden pr_loaded, pr_state and pr_draft fields.
type reviewForm struct {
	URL     string
	Action  model.ReviewAction
	Comment string
	Loaded  bool
	State   string
	Draft   bool
}

func parseReviewForm(r *http.Request) reviewForm {
	action := model.ReviewAction(r.FormValue("action"))
	if action == "" {
		action = model.ReviewActionApprove
	}
	loaded, _ := strconv.ParseBool(r.FormValue("pr_loaded"))
	draft, _ := strconv.ParseBool(r.FormValue("pr_draft"))
	return reviewForm{
		URL:     strings.TrimSpace(r.FormValue("url")),
		Action:  action,
		Comment: r.FormValue("comment"),
		Loaded:  loaded,
		State:   r.FormValue("pr_state"),
		Draft:   draft,
	}
}

// withSnapshot returns a copy of f describing the given details card.
func (f reviewForm) withSnapshot(d vm.DetailsViewModel) reviewForm {
	f.Loaded = d.Loaded
	f.State = d.State
	f.Draft = d.IsDraft
	return f
}

// submitDisabled reports whether the form cannot be submitted. An in-flight
// submission is handled in the browser with hx-disabled-elt.
func submitDisabled(f reviewForm) bool {
	switch {
	case f.URL == "":
		return true
	case !f.Action.Valid():
		return true
	case f.Action.RequiresComment() && strings.TrimSpace(f.Comment) == "":
		return true
	case !f.Loaded:
		return true
	case !strings.EqualFold(f.State, string(model.PRStateOpen)):
		return true
	case f.Draft:
		return true
	}
	return false
}

func toControlsViewModel(f reviewForm) vm.ControlsViewModel {
	c := vm.ControlsViewModel{
		Action:         string(f.Action),
		Comment:        f.Comment,
		ShowComment:    f.Action.RequiresComment(),
		SubmitDisabled: submitDisabled(f),
	}

	switch f.Action {
	case model.ReviewActionComment:
		c.CommentLabel = "Comment"
		c.CommentPlaceholder = "Add your comment here..."
		c.SubmitLabel = "Comment on PR"
	case model.ReviewActionRequestChanges:
		c.CommentLabel = "Change Request Comment"
		c.CommentPlaceholder = "Add your change request reasoning here..."
		c.SubmitLabel = "Request Changes"
	default:
		c.SubmitLabel = "Approve PR"
	}

	return c
}

var actionLabels = map[model.ReviewAction]string{
	model.ReviewActionApprove:        "Approve",
	model.ReviewActionComment:        "Comment",
	model.ReviewActionRequestChanges: "Request Changes",
}

func toActionOptions(selected model.ReviewAction) []vm.ActionOption {
	opts := make([]vm.ActionOption, 0, len(model.ReviewActions))
	for _, a := range model.ReviewActions {
		opts = append(opts, vm.ActionOption{
			Value:    string(a),
			Label:    actionLabels[a],
			Selected: a == selected,
		})
	}
	return opts
}

func toReviewerViewModel(r model.ReviewerIdentity) vm.ReviewerViewModel {
	return vm.ReviewerViewModel{
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Photo:       r.Photo,
	}
}

// toDetailsViewModel converts a snapshot into the PR card. The body is
// rendered as sanitized markdown.
func toDetailsViewModel(s model.PullRequestSnapshot) vm.DetailsViewModel {
	d := vm.DetailsViewModel{
		Loaded:         true,
		Title:          s.Title,
		State:          string(s.State),
		IsDraft:        s.IsDraft,
		Badge:          string(s.State),
		BadgeClass:     badgeClass(s),
		Author:         s.Author.Login,
		Created:        formatCreated(s.CreatedAt),
		ReviewDecision: s.ReviewDecision,
		BodyHTML:       RenderMarkdown(s.Body),
	}

	if s.IsDraft {
		d.Badge = "DRAFT"
		d.Warning = "This PR is in draft state and cannot be reviewed yet."
	} else if !s.IsOpen() {
		d.Warning = "This PR is " + strings.ToLower(string(s.State)) + " and cannot be reviewed."
	}

	return d
}

func badgeClass(s model.PullRequestSnapshot) string {
	if s.IsDraft {
		return "state-draft"
	}
	switch s.State {
	case model.PRStateOpen:
		return "state-open"
	case model.PRStateClosed:
		return "state-closed"
	case model.PRStateMerged:
		return "state-merged"
	}
	return ""
}

// formatCreated renders an RFC 3339 timestamp for display; unparseable
// values are shown as-is.
func formatCreated(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}

// reviewSummary is the second line of a successful result.
func reviewSummary(res model.ReviewResult) string {
	var verb string
	switch res.Action {
	case model.ReviewActionApprove:
		verb = "approved"
	case model.ReviewActionComment:
		verb = "commented on"
	default:
		verb = "requested changes"
	}
	return "Pull request " + res.Reference.String() + " was " + verb + " by " + res.Reviewer + "."
}

func toDiagnosticsViewModel(d model.Diagnostics) vm.DiagnosticsViewModel {
	out := vm.DiagnosticsViewModel{
		Timestamp:   d.Timestamp.UTC().Format(time.RFC3339),
		Environment: d.Environment,
		GoVersion:   d.GoVersion,
	}

	cli := vm.CheckViewModel{Label: "GitHub CLI Installation", Success: d.CLIInstalled.Success}
	if cli.Success {
		cli.Summary = "Installed - " + d.CLIInstalled.Version
	} else {
		cli.Summary = "Not installed - " + d.CLIInstalled.Error
	}
	out.Checks = append(out.Checks, cli)

	if d.AuthStatus != nil {
		check := vm.CheckViewModel{
			Label:   "Authentication Status",
			Success: d.IsAuthenticated(),
			Summary: "Not authenticated",
			Error:   d.AuthStatus.Error,
		}
		if check.Success {
			check.Summary = "Authenticated"
		}
		out.Checks = append(out.Checks, check)
		out.RawAuthOutput = d.AuthStatus.RawOutput
	}

	if d.APIAccess != nil {
		check := vm.CheckViewModel{Label: "GitHub API Access", Success: d.APIAccess.Success}
		if check.Success {
			check.Summary = "Working - Authenticated as " + d.APIAccess.Username
		} else {
			check.Summary = "Failed - " + d.APIAccess.Error
		}
		out.Checks = append(out.Checks, check)
	}

	if d.AuthScopes != nil {
		check := vm.CheckViewModel{Label: "Authentication Scopes", Success: d.AuthScopes.Success}
		if check.Success {
			check.Summary = "Available: " + strings.Join(d.AuthScopes.Scopes, ", ")
		} else {
			check.Summary = "Failed to retrieve - " + d.AuthScopes.Error
		}
		out.Checks = append(out.Checks, check)
	}

	for _, rec := range d.Recommendations {
		out.Recommendations = append(out.Recommendations, vm.RecommendationViewModel{
			Text:    rec.Text,
			Command: rec.Command,
			Link:    rec.Link,
		})
	}

	return out
}
