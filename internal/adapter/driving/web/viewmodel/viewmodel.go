// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// FormState is the screen the review page is currently showing.
type FormState string

// The review page moves through these states. CheckingTool and CheckingAuth
// render a loader that fetches the next fragment; Submitting is shown by
// the browser while the review POST is in flight.
const (
	StateCheckingTool    FormState = "checking-tool"
	StateToolUnavailable FormState = "tool-unavailable"
	StateCheckingAuth    FormState = "checking-auth"
	StateUnauthenticated FormState = "unauthenticated"
	StateReady           FormState = "ready"
	StateSubmitting      FormState = "submitting"
	StateResult          FormState = "result"
)

// AppViewModel is the top-level state of the review page.
type AppViewModel struct {
	State    FormState
	Version  string
	Error    string
	Reviewer ReviewerViewModel
	Form     FormViewModel
}

// ReviewerViewModel is the identity gh is authenticated as.
type ReviewerViewModel struct {
	Username    string
	DisplayName string
	Photo       string
}

// FormViewModel holds the review form fields.
type FormViewModel struct {
	URL      string
	Actions  []ActionOption
	Details  DetailsViewModel
	Controls ControlsViewModel
}

// ActionOption is one entry of the review action select.
type ActionOption struct {
	Value    string
	Label    string
	Selected bool
}

// DetailsViewModel is the pull request card shown under the URL field.
// Loaded is false until a snapshot was fetched successfully.
type DetailsViewModel struct {
	Loaded         bool
	Error          string
	Title          string
	State          string
	IsDraft        bool
	Badge          string
	BadgeClass     string
	Author         string
	Created        string
	ReviewDecision string
	BodyHTML       string
	Warning        string
}

// ControlsViewModel drives the comment field and submit button.
type ControlsViewModel struct {
	Action             string
	Comment            string
	ShowComment        bool
	CommentLabel       string
	CommentPlaceholder string
	SubmitLabel        string
	SubmitDisabled     bool

	// IncludeCommentField re-renders the comment field out of band. Only set
	// when the action changed so typing never loses focus.
	IncludeCommentField bool
}

// ResultViewModel reports the outcome of a review submission.
type ResultViewModel struct {
	Success bool
	Message string
	Summary string
	Detail  string

	// Refetch schedules a fresh PR details lookup after the result renders.
	Refetch bool
	// Controls is re-rendered out of band, with the comment cleared on success.
	Controls ControlsViewModel
}

// DiagnosticsViewModel is the rendered diagnostics bundle.
type DiagnosticsViewModel struct {
	Timestamp       string
	Environment     string
	GoVersion       string
	Checks          []CheckViewModel
	RawAuthOutput   string
	Recommendations []RecommendationViewModel
}

// CheckViewModel is one diagnostic sub-check line.
type CheckViewModel struct {
	Label   string
	Success bool
	Summary string
	Error   string
}

// RecommendationViewModel is a remediation step.
type RecommendationViewModel struct {
	Text    string
	Command string
	Link    string
}
