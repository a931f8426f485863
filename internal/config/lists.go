package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Built-in lists used when the corresponding file does not exist. The
// keyword list deliberately carries explicit case variants: matching is
// exact-substring per token, never case-folded.
var (
	DefaultRequiredFiles = []string{
		"Administration.log",
		"Nevaris.log",
		"Share_MSSQL.log",
	}

	DefaultKeywords = []string{
		"denied", "Denied",
		"Warn", "warn", "Warning",
		"fail", "Fail",
		"error", "Error", "ERROR",
		"critical", "Critical", "CRITICAL",
	}
)

// LoadList reads a newline-delimited token file. Blank lines and lines
// starting with '#' are skipped. A missing file is not an error: the
// defaults apply. Any other read failure is fatal so a typoed mount
// does not silently halve the keyword list.
func LoadList(path string, defaults []string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			out := make([]string, len(defaults))
			copy(out, defaults)
			return out, nil
		}
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list file %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list file %s contains no entries", path)
	}

	return out, nil
}
