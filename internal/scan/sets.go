package scan

// RequiredFiles is the ordered set of filenames that must exist in every
// date directory. Order is preserved for report readability.
type RequiredFiles []string

// NewRequiredFiles deduplicates the given names, keeping first-seen order.
func NewRequiredFiles(names []string) RequiredFiles {
	return RequiredFiles(dedup(names))
}

// Keywords is the ordered set of substrings whose presence on a line of
// a scanned file constitutes a hit. Matching is exact and
// case-sensitive: "error" and "Error" are independent entries, and only
// literally configured variants match.
type Keywords []string

// NewKeywords deduplicates the given tokens, keeping first-seen order.
func NewKeywords(tokens []string) Keywords {
	return Keywords(dedup(tokens))
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
