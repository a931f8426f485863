package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteFiles writes the run's report files into outputDir, both named
// by the run date: `<date>-Logcheck.log` (the activity report, appended
// on every run so repeated manual runs keep their history) and
// `<date>-ErrWarn.log` (findings only, rewritten each run so the mail
// attachment reflects the latest state; only written when the report is
// dirty). Returns the findings path, "" for a clean run.
func WriteFiles(outputDir string, r *Report, duration time.Duration) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	date := r.GeneratedAt.Format(DateLayout)

	activityPath := filepath.Join(outputDir, date+"-Logcheck.log")
	f, err := os.OpenFile(activityPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open activity report: %w", err)
	}
	_, werr := f.WriteString(RenderActivity(r, duration) + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", fmt.Errorf("write activity report: %w", werr)
	}

	if r.Clean() {
		return "", nil
	}

	findingsPath := filepath.Join(outputDir, date+"-ErrWarn.log")
	if err := os.WriteFile(findingsPath, []byte(RenderFindings(r)), 0o644); err != nil {
		return "", fmt.Errorf("write findings report: %w", err)
	}

	return findingsPath, nil
}
