package scan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		ServerName:  "backup01",
		BaseDir:     "/srv/logs",
		GeneratedAt: time.Date(2026, 8, 25, 6, 0, 3, 0, time.UTC),
		Days: []DayResult{
			{Date: "2026-08-25"},
			{
				Date:         "2026-08-24",
				MissingFiles: []string{"Nevaris.log"},
				Hits: []KeywordHit{
					{File: "Administration.log", Line: 12, Keyword: "ERROR", Text: "2026-08-24 03:12:44 ERROR backup failed"},
				},
				FileErrors: []FileError{{File: "Share_MSSQL.log", Reason: "file is empty"}},
			},
			{
				Date:         "2026-08-23",
				DirMissing:   true,
				MissingFiles: []string{"Administration.log", "Nevaris.log", "Share_MSSQL.log"},
			},
		},
	}
}

func TestRenderFindings_Format(t *testing.T) {
	out := RenderFindings(sampleReport())

	assert.Contains(t, out, "Log check findings for backup01")
	assert.Contains(t, out, "Generated: 2026-08-25 06:00:03")
	assert.Contains(t, out, "Base directory: /srv/logs")

	// One section per window date, in window order.
	i25 := strings.Index(out, "== 2026-08-25 ==")
	i24 := strings.Index(out, "== 2026-08-24 ==")
	i23 := strings.Index(out, "== 2026-08-23 ==")
	require.True(t, i25 >= 0 && i24 > i25 && i23 > i24)

	// Hit lines carry file, line number, keyword, and the full line text.
	assert.Contains(t, out, "Administration.log:12: ERROR — 2026-08-24 03:12:44 ERROR backup failed")
	assert.Contains(t, out, "missing: Nevaris.log")
	assert.Contains(t, out, "unusable: Share_MSSQL.log (file is empty)")
	assert.Contains(t, out, "directory missing, all required files absent")
}

func TestRenderFindings_MissingFilesListedBeforeHits(t *testing.T) {
	out := RenderFindings(sampleReport())

	day := out[strings.Index(out, "== 2026-08-24 =="):]
	assert.Less(t, strings.Index(day, "missing: Nevaris.log"), strings.Index(day, "Administration.log:12:"))
}

func TestRenderFindings_CleanDaySaysOK(t *testing.T) {
	out := RenderFindings(sampleReport())

	day25 := out[strings.Index(out, "== 2026-08-25 =="):strings.Index(out, "== 2026-08-24 ==")]
	assert.Contains(t, day25, "ok")
}

func TestRenderActivity_SummaryAndResult(t *testing.T) {
	out := RenderActivity(sampleReport(), 1200*time.Millisecond)

	assert.Contains(t, out, "Log check run for backup01")
	assert.Contains(t, out, "Dates checked: 3 (most recent first)")
	assert.Contains(t, out, "Summary: 4 missing file(s), 1 keyword hit(s), 1 unusable file(s), 1 missing date directory(ies)")
	assert.Contains(t, out, "Result: DIRTY")
	assert.Contains(t, out, "Duration: 1.2s")
}

func TestRenderActivity_CleanRun(t *testing.T) {
	rep := &Report{
		ServerName:  "backup01",
		BaseDir:     "/srv/logs",
		GeneratedAt: time.Date(2026, 8, 25, 6, 0, 3, 0, time.UTC),
		Days:        []DayResult{{Date: "2026-08-25"}},
	}

	out := RenderActivity(rep, 40*time.Millisecond)
	assert.Contains(t, out, "Result: CLEAN")
	assert.Contains(t, out, "Summary: 0 missing file(s), 0 keyword hit(s), 0 unusable file(s), 0 missing date directory(ies)")
}
