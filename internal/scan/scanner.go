package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrBaseDir marks a window whose base directory cannot be read at all.
// Everything below that (absent date directories, missing or unreadable
// files) is a finding, not an error.
var ErrBaseDir = errors.New("base directory unreadable")

// Long log lines are kept; anything beyond this per line is a read error.
const maxLineBytes = 1024 * 1024

// Scanner walks a date-partitioned log tree and checks each date
// directory for required-file presence and keyword hits.
type Scanner struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewScanner(logger zerolog.Logger) *Scanner {
	return &Scanner{
		logger: logger.With().Str("component", "scanner").Logger(),
		now:    time.Now,
	}
}

// Scan checks every date in the window against the required file set and
// keyword set, both treated as read-only for the duration of the call.
// The returned report covers exactly the window's dates, most recent
// first. Scan fails only when the base directory itself is unreadable or
// the context is cancelled; the report is then not exposed at all.
func (s *Scanner) Scan(ctx context.Context, w Window, required RequiredFiles, keywords Keywords) (*Report, error) {
	if _, err := os.ReadDir(w.BaseDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseDir, err)
	}

	rep := &Report{
		BaseDir:     w.BaseDir,
		GeneratedAt: s.now(),
		Days:        make([]DayResult, 0, w.Days),
	}

	for _, date := range w.Dates() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan aborted: %w", err)
		}

		day := s.scanDay(date, w, required, keywords)
		rep.Days = append(rep.Days, day)

		s.logger.Debug().
			Str("date", day.Date).
			Bool("dir_missing", day.DirMissing).
			Int("missing_files", len(day.MissingFiles)).
			Int("keyword_hits", len(day.Hits)).
			Msg("date directory scanned")
	}

	return rep, nil
}

func (s *Scanner) scanDay(date time.Time, w Window, required RequiredFiles, keywords Keywords) DayResult {
	day := DayResult{Date: date.Format(DateLayout)}
	dir := filepath.Join(w.BaseDir, day.Date)

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		day.DirMissing = true
	case err != nil:
		day.FileErrors = append(day.FileErrors, FileError{
			File:   day.Date,
			Reason: fmt.Sprintf("directory not readable: %v", err),
		})
		return day
	case !info.IsDir():
		// Something else occupies the date's path; no logs can be here.
		day.DirMissing = true
	}

	if day.DirMissing {
		// All required files count as missing. No reads happen, so no
		// keyword hits can appear for this date.
		day.MissingFiles = append([]string(nil), required...)
		return day
	}

	for _, name := range required {
		s.scanFile(dir, name, keywords, &day)
	}

	return day
}

func (s *Scanner) scanFile(dir, name string, keywords Keywords, day *DayResult) {
	path := filepath.Join(dir, name)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		day.MissingFiles = append(day.MissingFiles, name)
		return
	}
	if err != nil {
		day.FileErrors = append(day.FileErrors, FileError{File: name, Reason: err.Error()})
		return
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() == 0 {
		// An empty log means the producing job never ran.
		day.FileErrors = append(day.FileErrors, FileError{File: name, Reason: "file is empty"})
		return
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		for _, kw := range keywords {
			if strings.Contains(line, kw) {
				day.Hits = append(day.Hits, KeywordHit{
					File:    name,
					Line:    lineNo,
					Keyword: kw,
					Text:    line,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		// Keep any hits already collected; the partial read is recorded.
		day.FileErrors = append(day.FileErrors, FileError{
			File:   name,
			Reason: fmt.Sprintf("read failed: %v", err),
		})
	}
}
