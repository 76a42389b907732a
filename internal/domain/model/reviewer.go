package model

// CurrentUserID is the fixed identifier of the single gh session identity.
const CurrentUserID = "current-user"

// UnknownReviewer is reported when the acting identity cannot be determined
// after a successful review or merge.
const UnknownReviewer = "unknown"

// ReviewerIdentity is the account gh is currently authenticated as.
// At most one exists at a time.
type ReviewerIdentity struct {
	ID          string
	Username    string
	DisplayName string
	Photo       string
}

// NewReviewerIdentity builds an identity for login. Empty displayName and
// photo fall back to the login and the GitHub avatar URL.
func NewReviewerIdentity(login, displayName, photo string) ReviewerIdentity {
	if displayName == "" {
		displayName = login
	}
	if photo == "" {
		photo = AvatarURL(login)
	}
	return ReviewerIdentity{
		ID:          CurrentUserID,
		Username:    login,
		DisplayName: displayName,
		Photo:       photo,
	}
}

// AvatarURL returns the default GitHub avatar location for login.
func AvatarURL(login string) string {
	return "https://github.com/" + login + ".png"
}

// ToolStatus reports whether the gh CLI can be executed.
type ToolStatus struct {
	Installed bool
	Version   string
	Error     string
}

// AuthStatus is what gh auth status reports about the stored session.
type AuthStatus struct {
	Raw      string
	LoggedIn bool
	Username string // Empty when no extraction strategy matched.
	Scopes   []string
}

// APIUser is the subset of the authenticated user's profile the relay uses.
type APIUser struct {
	ID        int64
	Login     string
	Name      string
	AvatarURL string
}
