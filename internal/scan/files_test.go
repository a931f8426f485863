package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles_DirtyWritesBoth(t *testing.T) {
	out := t.TempDir()
	rep := sampleReport()

	attachment, err := WriteFiles(out, rep, time.Second)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "2026-08-25-ErrWarn.log"), attachment)

	activity, err := os.ReadFile(filepath.Join(out, "2026-08-25-Logcheck.log"))
	require.NoError(t, err)
	assert.Contains(t, string(activity), "Result: DIRTY")

	findings, err := os.ReadFile(attachment)
	require.NoError(t, err)
	assert.Contains(t, string(findings), "Administration.log:12: ERROR")
}

func TestWriteFiles_CleanWritesActivityOnly(t *testing.T) {
	out := t.TempDir()
	rep := &Report{
		ServerName:  "backup01",
		BaseDir:     "/srv/logs",
		GeneratedAt: time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC),
		Days:        []DayResult{{Date: "2026-08-25"}},
	}

	attachment, err := WriteFiles(out, rep, time.Second)
	require.NoError(t, err)
	assert.Empty(t, attachment)

	_, err = os.Stat(filepath.Join(out, "2026-08-25-Logcheck.log"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "2026-08-25-ErrWarn.log"))
	assert.True(t, os.IsNotExist(err), "no findings file on a clean run")
}

func TestWriteFiles_ActivityAppendsAcrossRuns(t *testing.T) {
	out := t.TempDir()
	rep := sampleReport()

	_, err := WriteFiles(out, rep, time.Second)
	require.NoError(t, err)
	_, err = WriteFiles(out, rep, 2*time.Second)
	require.NoError(t, err)

	activity, err := os.ReadFile(filepath.Join(out, "2026-08-25-Logcheck.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(activity), "Log check run for backup01"))
}

func TestWriteFiles_FindingsRewrittenEachRun(t *testing.T) {
	out := t.TempDir()
	rep := sampleReport()

	_, err := WriteFiles(out, rep, time.Second)
	require.NoError(t, err)
	_, err = WriteFiles(out, rep, time.Second)
	require.NoError(t, err)

	findings, err := os.ReadFile(filepath.Join(out, "2026-08-25-ErrWarn.log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(findings), "Log check findings for backup01"))
}

func TestWriteFiles_CreatesOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "reports")

	_, err := WriteFiles(out, sampleReport(), time.Second)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "2026-08-25-Logcheck.log"))
	assert.NoError(t, err)
}
