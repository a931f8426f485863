package scan

import "time"

// KeywordHit is one occurrence of a configured keyword on one line. A
// line containing two configured keywords produces two hits, each with
// the keyword in its original spelling.
type KeywordHit struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Keyword string `json:"keyword"`
	Text    string `json:"text"`
}

// FileError is a recoverable per-file finding: the file is present but
// could not be used (unreadable, undecodable, empty).
type FileError struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// DayResult holds everything found for one date directory. A date whose
// directory does not exist at all has DirMissing set and lists the full
// required file set as missing.
type DayResult struct {
	Date         string       `json:"date"`
	DirMissing   bool         `json:"dir_missing"`
	MissingFiles []string     `json:"missing_files,omitempty"`
	Hits         []KeywordHit `json:"keyword_hits,omitempty"`
	FileErrors   []FileError  `json:"file_errors,omitempty"`
}

// HasFindings reports whether this date contributes to a dirty report.
func (d DayResult) HasFindings() bool {
	return d.DirMissing || len(d.MissingFiles) > 0 || len(d.Hits) > 0 || len(d.FileErrors) > 0
}

// Report aggregates the results for a whole window. It is only handed
// to the notifier once the window has been scanned completely.
type Report struct {
	ServerName  string      `json:"server_name"`
	BaseDir     string      `json:"base_dir"`
	GeneratedAt time.Time   `json:"generated_at"`
	Days        []DayResult `json:"days"`
}

// Clean reports whether no date in the window produced any finding.
func (r *Report) Clean() bool {
	for _, d := range r.Days {
		if d.HasFindings() {
			return false
		}
	}
	return true
}

// Dirty is the inverse of Clean; a dirty report triggers notification.
func (r *Report) Dirty() bool {
	return !r.Clean()
}
