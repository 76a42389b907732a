package model

import (
	"fmt"
	"regexp"
	"strconv"
)

// referencePattern matches the owner, repository and number segments of a
// GitHub pull request URL, e.g. https://github.com/owner/repo/pull/123.
var referencePattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// ExpectedReferenceFormat is shown to users whose URL does not parse.
const ExpectedReferenceFormat = "https://github.com/owner/repo/pull/123"

// PullRequestReference identifies a single pull request on GitHub.
// It is derived per request and never stored.
type PullRequestReference struct {
	Owner  string
	Repo   string
	Number int
}

// ParseReference extracts a PullRequestReference from a pull request URL.
// Any other shape is rejected with an error wrapping ErrInvalidReference.
func ParseReference(rawURL string) (PullRequestReference, error) {
	m := referencePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return PullRequestReference{}, invalidReference()
	}

	number, err := strconv.Atoi(m[3])
	if err != nil || number <= 0 {
		return PullRequestReference{}, invalidReference()
	}

	return PullRequestReference{Owner: m[1], Repo: m[2], Number: number}, nil
}

// MatchesReferencePattern reports whether rawURL looks like a pull request URL.
// The GUI uses it to decide whether a details lookup is worth running.
func MatchesReferencePattern(rawURL string) bool {
	return referencePattern.MatchString(rawURL)
}

// FullName returns the "owner/repo" form accepted by gh's --repo flag.
func (r PullRequestReference) FullName() string {
	return r.Owner + "/" + r.Repo
}

// String returns the "owner/repo#number" form used in result messages.
func (r PullRequestReference) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

func invalidReference() error {
	return NewError(ErrInvalidReference, "Invalid PR URL format. Expected format: "+ExpectedReferenceFormat, nil)
}
