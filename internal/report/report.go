// Package report renders the end-of-run summary for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gopydoc/internal/documenter"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Render formats a run report as a short multi-line summary.
func Render(r *documenter.Report) string {
	var b strings.Builder

	title := "gopydoc"
	if r.DryRun {
		title += " (dry run)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %d file(s), %d node(s) eligible\n",
		dimStyle.Render("scanned"), r.Files, r.Nodes)
	fmt.Fprintf(&b, "%s %d docstring(s) written", okStyle.Render("documented"), r.Documented)
	if r.CacheHits > 0 {
		fmt.Fprintf(&b, " (%d from cache)", r.CacheHits)
	}
	b.WriteString("\n")

	if r.Kept > 0 {
		fmt.Fprintf(&b, "%s %d existing docstring(s) already accurate\n",
			dimStyle.Render("kept"), r.Kept)
	}
	if len(r.SkippedFiles) > 0 {
		fmt.Fprintf(&b, "%s %d file(s) skipped: %s\n",
			warnStyle.Render("skipped"), len(r.SkippedFiles), strings.Join(r.SkippedFiles, ", "))
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "%s %s: %v\n", errStyle.Render("failed"), f.Node, f.Err)
	}

	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("took"), r.Duration.Round(10*time.Millisecond))
	return b.String()
}
