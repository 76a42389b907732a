package model

import "time"

// CheckResult is the outcome of one diagnostic sub-check. Only the fields
// relevant to the check are populated.
type CheckResult struct {
	Success bool
	Error   string

	Version       string   // cli_installed
	Authenticated *bool    // auth_status
	RawOutput     string   // auth_status
	Username      string   // api_access
	Name          string   // api_access
	UserID        int64    // api_access
	Scopes        []string // auth_scopes
}

// Diagnostics bundles the independent sub-checks run by RunDiagnostics.
// Auth-dependent checks are nil when the CLI is not installed.
type Diagnostics struct {
	Timestamp       time.Time
	Environment     string
	GoVersion       string
	CLIInstalled    CheckResult
	AuthStatus      *CheckResult
	APIAccess       *CheckResult
	AuthScopes      *CheckResult
	Recommendations []Recommendation
}

// Recommendation is a remediation step derived from failed checks.
type Recommendation struct {
	Text    string
	Command string // Shell command to run, if any.
	Link    string // Documentation link, if any.
}

// IsAuthenticated reports whether the auth_status check found a session.
func (d Diagnostics) IsAuthenticated() bool {
	return d.AuthStatus != nil && d.AuthStatus.Authenticated != nil && *d.AuthStatus.Authenticated
}

// HasScope reports whether the auth_scopes check succeeded and listed scope.
func (d Diagnostics) HasScope(scope string) bool {
	if d.AuthScopes == nil || !d.AuthScopes.Success {
		return false
	}
	for _, s := range d.AuthScopes.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
