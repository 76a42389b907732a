package ghcli

import (
	"regexp"
	"strings"
)

var (
	loggedInAsPattern      = regexp.MustCompile(`Logged in to github\.com as ([^\s]+)`)
	loggedInAccountPattern = regexp.MustCompile(`Logged in to github\.com account ([^\s]+)`)
	tokenScopesPattern     = regexp.MustCompile(`(?m)Token scopes:[ \t]*(.*)$`)
)

// identityStrategy extracts a username from gh auth status text.
type identityStrategy struct {
	name    string
	extract func(text string) (string, bool)
}

// authStatusStrategies are tried in order; the first match wins. The output
// format changed across gh releases, hence several shapes.
var authStatusStrategies = []identityStrategy{
	{name: "logged-in-as", extract: patternExtractor(loggedInAsPattern)},
	{name: "logged-in-account", extract: patternExtractor(loggedInAccountPattern)},
	{name: "line-scan", extract: scanForAtSign},
}

func patternExtractor(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 || m[1] == "" {
			return "", false
		}
		return m[1], true
	}
}

// scanForAtSign looks for a line mentioning "as" and "@" and takes the first
// word after the "@".
func scanForAtSign(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "as") || !strings.Contains(line, "@") {
			continue
		}
		_, after, _ := strings.Cut(line, "@")
		fields := strings.Fields(after)
		if len(fields) > 0 {
			return fields[0], true
		}
	}
	return "", false
}

// ExtractUsername runs the auth status strategies over text and returns the
// username along with the name of the strategy that matched.
func ExtractUsername(text string) (username, strategy string, ok bool) {
	for _, s := range authStatusStrategies {
		if u, found := s.extract(text); found {
			return u, s.name, true
		}
	}
	return "", "", false
}

// ParseScopes reads the "Token scopes:" line of gh auth status output.
// It returns nil when the line is absent and an empty slice when gh reports
// no scopes.
func ParseScopes(text string) []string {
	m := tokenScopesPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	scopes := []string{}
	value := strings.TrimSpace(m[1])
	if value == "" || value == "none" {
		return scopes
	}

	for _, part := range strings.Split(value, ",") {
		scope := strings.Trim(strings.TrimSpace(part), `'"`)
		if scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}
