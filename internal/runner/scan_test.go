package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/logcheck/internal/scan"
)

var (
	scanRequired = scan.NewRequiredFiles([]string{"Administration.log", "Nevaris.log"})
	scanKeywords = scan.NewKeywords([]string{"ERROR", "Warning"})
)

func newTestScan(t *testing.T, base, output string, today time.Time, days int) *Scan {
	t.Helper()
	s := NewScan(zerolog.Nop(), "backup-check", scan.NewScanner(zerolog.Nop()), ScanConfig{
		BaseDir:    base,
		OutputDir:  output,
		ServerName: "backup01",
		Days:       days,
		Required:   scanRequired,
		Keywords:   scanKeywords,
	})
	s.now = func() time.Time { return today }
	return s
}

func writeScanDay(t *testing.T, base string, day time.Time, files map[string]string) {
	t.Helper()
	dir := filepath.Join(base, day.Format(scan.DateLayout))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestScanRun_CleanTreeSucceeds(t *testing.T) {
	base, output := t.TempDir(), t.TempDir()
	today := time.Date(2026, 8, 25, 6, 30, 0, 0, time.UTC)
	writeScanDay(t, base, today, map[string]string{
		"Administration.log": "backup finished ok\n",
		"Nevaris.log":        "backup finished ok\n",
	})

	res := newTestScan(t, base, output, today, 1).Run(context.Background())

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Contains(t, res.Detail, "no findings")
	assert.Empty(t, res.Attachment)

	// The activity report is written even for a clean run, the findings
	// file is not.
	_, err := os.Stat(filepath.Join(output, "2026-08-25-Logcheck.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(output, "2026-08-25-ErrWarn.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestScanRun_FindingsFailWithAttachment(t *testing.T) {
	base, output := t.TempDir(), t.TempDir()
	today := time.Date(2026, 8, 25, 6, 30, 0, 0, time.UTC)
	writeScanDay(t, base, today, map[string]string{
		"Administration.log": "2026-08-25 03:12 ERROR share unreachable\n",
		"Nevaris.log":        "backup finished ok\n",
	})

	res := newTestScan(t, base, output, today, 1).Run(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Detail, "ERROR share unreachable")
	assert.Contains(t, res.Detail, "backup01")

	require.NotEmpty(t, res.Attachment)
	assert.True(t, strings.HasSuffix(res.Attachment, "2026-08-25-ErrWarn.log"))
	content, err := os.ReadFile(res.Attachment)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ERROR share unreachable")
}

func TestScanRun_WindowFollowsRunTime(t *testing.T) {
	// Only yesterday's directory exists; with a start offset of 1 the
	// window must land exactly on it.
	base, output := t.TempDir(), t.TempDir()
	today := time.Date(2026, 8, 25, 0, 10, 0, 0, time.UTC)
	writeScanDay(t, base, today.AddDate(0, 0, -1), map[string]string{
		"Administration.log": "backup finished ok\n",
		"Nevaris.log":        "backup finished ok\n",
	})

	s := newTestScan(t, base, output, today, 1)
	s.cfg.StartDayOffset = 1

	res := s.Run(context.Background())
	assert.Equal(t, StatusSucceeded, res.Status)
}

func TestScanRun_MissingBaseDirFails(t *testing.T) {
	output := t.TempDir()
	today := time.Date(2026, 8, 25, 6, 30, 0, 0, time.UTC)
	base := filepath.Join(t.TempDir(), "missing")

	res := newTestScan(t, base, output, today, 1).Run(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Detail, "base directory")
	assert.Empty(t, res.Attachment)
}

func TestScanRun_CancelledContextTimesOut(t *testing.T) {
	base, output := t.TempDir(), t.TempDir()
	today := time.Date(2026, 8, 25, 6, 30, 0, 0, time.UTC)
	writeScanDay(t, base, today, map[string]string{
		"Administration.log": "backup finished ok\n",
		"Nevaris.log":        "backup finished ok\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestScan(t, base, output, today, 1).Run(ctx)

	assert.Equal(t, StatusTimedOut, res.Status)
}

func TestScanRun_UnwritableOutputStillReportsFindings(t *testing.T) {
	base := t.TempDir()
	today := time.Date(2026, 8, 25, 6, 30, 0, 0, time.UTC)
	writeScanDay(t, base, today, map[string]string{
		"Administration.log": "ERROR tape drive offline\n",
		"Nevaris.log":        "backup finished ok\n",
	})

	// A file squats on the output path so the report writes must fail.
	output := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(output, []byte("occupied"), 0o644))

	res := newTestScan(t, base, output, today, 1).Run(context.Background())

	assert.Equal(t, StatusFailed, res.Status, "findings still fail the run")
	assert.Contains(t, res.Detail, "ERROR tape drive offline")
	assert.Contains(t, res.Detail, "report files not written")
	assert.Empty(t, res.Attachment)
}
