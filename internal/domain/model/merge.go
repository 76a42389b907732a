package model

// MergeStrategy selects how gh merges a pull request.
type MergeStrategy string

const (
	MergeStrategyMerge  MergeStrategy = "merge"
	MergeStrategySquash MergeStrategy = "squash"
	MergeStrategyRebase MergeStrategy = "rebase"
)

// DefaultMergeStrategy is used when a request does not name one.
const DefaultMergeStrategy = MergeStrategySquash

// Valid reports whether s is a recognised merge strategy.
func (s MergeStrategy) Valid() bool {
	switch s {
	case MergeStrategyMerge, MergeStrategySquash, MergeStrategyRebase:
		return true
	}
	return false
}

// Description is the verb phrase used in "PR <description> successfully".
func (s MergeStrategy) Description() string {
	switch s {
	case MergeStrategySquash:
		return "squash merged"
	case MergeStrategyRebase:
		return "rebased and merged"
	default:
		return "merged"
	}
}

// MergeRequest asks for a pull request to be merged.
type MergeRequest struct {
	URL          string
	Strategy     MergeStrategy
	DeleteBranch bool
}

// MergeResult describes a completed merge.
type MergeResult struct {
	Message       string
	Reference     PullRequestReference
	User          string
	Strategy      MergeStrategy
	BranchDeleted bool
}
