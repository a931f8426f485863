package scan

import (
	"fmt"
	"strings"
	"time"
)

const renderTimeLayout = "2006-01-02 15:04:05"

// RenderFindings builds the findings report: one section per date in
// window order, missing files first, then keyword hits in the form
// "<file>:<line>: <keyword> — <line text>", then unusable files. This
// text becomes the ErrWarn file and the notification mail body.
func RenderFindings(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Log check findings for %s\n", r.ServerName)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(renderTimeLayout))
	fmt.Fprintf(&b, "Base directory: %s\n", r.BaseDir)

	for _, day := range r.Days {
		b.WriteString("\n")
		renderDay(&b, day)
	}

	return b.String()
}

// RenderActivity builds the full run report written to the Logcheck
// file on every run, clean or dirty: per-date sections plus totals.
func RenderActivity(r *Report, duration time.Duration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Log check run for %s\n", r.ServerName)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(renderTimeLayout))
	fmt.Fprintf(&b, "Base directory: %s\n", r.BaseDir)
	fmt.Fprintf(&b, "Dates checked: %d (most recent first)\n", len(r.Days))

	for _, day := range r.Days {
		b.WriteString("\n")
		renderDay(&b, day)
	}

	var missing, hits, fileErrs, missingDirs int
	for _, day := range r.Days {
		missing += len(day.MissingFiles)
		hits += len(day.Hits)
		fileErrs += len(day.FileErrors)
		if day.DirMissing {
			missingDirs++
		}
	}

	result := "CLEAN"
	if r.Dirty() {
		result = "DIRTY"
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Summary: %d missing file(s), %d keyword hit(s), %d unusable file(s), %d missing date directory(ies)\n",
		missing, hits, fileErrs, missingDirs)
	fmt.Fprintf(&b, "Result: %s\n", result)
	fmt.Fprintf(&b, "Duration: %s\n", duration.Round(time.Millisecond))

	return b.String()
}

func renderDay(b *strings.Builder, day DayResult) {
	fmt.Fprintf(b, "== %s ==\n", day.Date)

	if !day.HasFindings() {
		b.WriteString("ok\n")
		return
	}

	if day.DirMissing {
		b.WriteString("directory missing, all required files absent\n")
	}
	for _, name := range day.MissingFiles {
		fmt.Fprintf(b, "missing: %s\n", name)
	}
	for _, hit := range day.Hits {
		fmt.Fprintf(b, "%s:%d: %s — %s\n", hit.File, hit.Line, hit.Keyword, hit.Text)
	}
	for _, fe := range day.FileErrors {
		fmt.Fprintf(b, "unusable: %s (%s)\n", fe.File, fe.Reason)
	}
}
