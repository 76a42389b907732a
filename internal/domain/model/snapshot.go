package model

import "strings"

// PRState is the state gh reports for a pull request.
type PRState string

const (
	PRStateOpen   PRState = "OPEN"
	PRStateClosed PRState = "CLOSED"
	PRStateMerged PRState = "MERGED"
)

// SnapshotFields is the --json field list requested from gh pr view.
const SnapshotFields = "title,state,author,createdAt,body,url,reviewDecision,isDraft"

// PullRequestAuthor is the author object embedded in gh pr view output.
type PullRequestAuthor struct {
	Login string `json:"login"`
}

// PullRequestSnapshot is a read-only projection of a pull request, fetched
// fresh on every request. JSON tags match gh's field names so the tool's
// output decodes directly and is relayed unchanged.
type PullRequestSnapshot struct {
	Title          string            `json:"title"`
	State          PRState           `json:"state"`
	Author         PullRequestAuthor `json:"author"`
	CreatedAt      string            `json:"createdAt"`
	Body           string            `json:"body"`
	URL            string            `json:"url"`
	ReviewDecision string            `json:"reviewDecision"`
	IsDraft        bool              `json:"isDraft"`
}

// IsOpen reports whether the pull request is open. gh reports upper case
// states; lower case is accepted as well.
func (s PullRequestSnapshot) IsOpen() bool {
	return strings.EqualFold(string(s.State), string(PRStateOpen))
}

// Reviewable is true when a review can be submitted: open and not a draft.
func (s PullRequestSnapshot) Reviewable() bool {
	return s.IsOpen() && !s.IsDraft
}
