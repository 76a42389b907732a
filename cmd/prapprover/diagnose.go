package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/prapprover/internal/domain/model"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check the gh CLI installation and authentication",
	Long:  "diagnose runs the same checks as GET /api/diagnostics and prints them as a table followed by recommendations.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		diag := newRelayService(cfg, logger).RunDiagnostics(cmd.Context(), cfg.Environment)
		if err := writeReport(cmd.OutOrStdout(), diag); err != nil {
			return fmt.Errorf("write diagnostics report: %w", err)
		}
		if n := len(diag.Recommendations); n > 0 {
			return fmt.Errorf("diagnostics reported %d recommendation(s)", n)
		}
		return nil
	},
}

type reportRow struct {
	check  string
	status string
	detail string
}

func reportRows(d model.Diagnostics) []reportRow {
	rows := []reportRow{row("GitHub CLI Installation", &d.CLIInstalled, d.CLIInstalled.Version)}

	authRow := row("Authentication Status", d.AuthStatus, "logged in")
	if d.AuthStatus != nil && d.AuthStatus.Success && !d.IsAuthenticated() {
		authRow.status, authRow.detail = "FAIL", "not logged in"
	}
	rows = append(rows, authRow)

	apiDetail := ""
	if d.APIAccess != nil && d.APIAccess.Username != "" {
		apiDetail = d.APIAccess.Username
		if d.APIAccess.Name != "" {
			apiDetail += " (" + d.APIAccess.Name + ")"
		}
	}
	rows = append(rows, row("GitHub API Access", d.APIAccess, apiDetail))

	scopeDetail := ""
	if d.AuthScopes != nil {
		scopeDetail = strings.Join(d.AuthScopes.Scopes, ", ")
	}
	rows = append(rows, row("Authentication Scopes", d.AuthScopes, scopeDetail))
	return rows
}

func row(label string, c *model.CheckResult, detail string) reportRow {
	switch {
	case c == nil:
		return reportRow{check: label, status: "SKIP", detail: "requires the GitHub CLI"}
	case !c.Success:
		return reportRow{check: label, status: "FAIL", detail: c.Error}
	default:
		return reportRow{check: label, status: "OK", detail: detail}
	}
}

// writeReport prints the check table and the recommendations.
func writeReport(w io.Writer, d model.Diagnostics) error {
	rows := reportRows(d)

	checkWidth := runewidth.StringWidth("CHECK")
	for _, r := range rows {
		checkWidth = max(checkWidth, runewidth.StringWidth(r.check))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Environment: %s  Go: %s  Time: %s\n\n", d.Environment, d.GoVersion, d.Timestamp.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(&b, "%s  %s  %s\n", padRight("CHECK", checkWidth), padRight("STATUS", 6), "DETAIL")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %s  %s\n", padRight(r.check, checkWidth), padRight(r.status, 6), firstLine(r.detail))
	}

	if len(d.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for i, rec := range d.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec.Text)
			if rec.Command != "" {
				fmt.Fprintf(&b, "   $ %s\n", rec.Command)
			}
			if rec.Link != "" {
				fmt.Fprintf(&b, "   %s\n", rec.Link)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
