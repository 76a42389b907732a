package model

import "strings"

// ReviewAction is the disposition a reviewer records on a pull request.
type ReviewAction string

const (
	ReviewActionApprove        ReviewAction = "approve"
	ReviewActionComment        ReviewAction = "comment"
	ReviewActionRequestChanges ReviewAction = "request-changes"
)

// ReviewActions lists the accepted actions in display order.
var ReviewActions = []ReviewAction{ReviewActionApprove, ReviewActionComment, ReviewActionRequestChanges}

// Valid reports whether a is one of the accepted review actions.
func (a ReviewAction) Valid() bool {
	switch a {
	case ReviewActionApprove, ReviewActionComment, ReviewActionRequestChanges:
		return true
	}
	return false
}

// RequiresComment is true for actions that cannot be submitted without text.
func (a ReviewAction) RequiresComment() bool {
	return a == ReviewActionComment || a == ReviewActionRequestChanges
}

// PastTense is used to build "PR <past tense> successfully" messages.
func (a ReviewAction) PastTense() string {
	switch a {
	case ReviewActionApprove:
		return "approved"
	case ReviewActionRequestChanges:
		return "requested changes on"
	default:
		return "reviewed"
	}
}

// ReviewRequest is a review to submit on a pull request.
type ReviewRequest struct {
	URL     string
	Action  ReviewAction
	Comment string
}

// HasComment reports whether the request carries non-blank comment text.
func (r ReviewRequest) HasComment() bool {
	return strings.TrimSpace(r.Comment) != ""
}

// ReviewResult describes a review that was submitted. It is a response
// payload only and is never stored.
type ReviewResult struct {
	Success   bool
	Message   string
	Reference PullRequestReference
	Reviewer  string
	Action    ReviewAction
}
