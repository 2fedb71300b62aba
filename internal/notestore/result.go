package notestore

import "strings"

// TagFailure records a tag that could not be created or linked while saving a note.
type TagFailure struct {
	Name string
	Err  error
}

// SaveResult reports the outcome of CreateNote and UpdateNote. The note row
// itself was written; Failed lists the tags that did not make it.
type SaveResult struct {
	NoteID int64
	Linked []string
	Failed []TagFailure
}

// Partial reports whether at least one requested tag failed to link.
func (r SaveResult) Partial() bool {
	return len(r.Failed) > 0
}

// FailedNames returns the names of the tags that failed to link.
func (r SaveResult) FailedNames() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.Name)
	}
	return out
}

// SplitTagNames turns a comma-delimited tag field into a clean list:
// entries are trimmed, empty ones dropped, duplicates removed (first wins).
func SplitTagNames(input string) []string {
	return CleanTagNames(strings.Split(input, ","))
}

// CleanTagNames trims every name and drops empty and repeated entries.
func CleanTagNames(names []string) []string {
	trimmed := make([]string, len(names))
	for i, n := range names {
		trimmed[i] = strings.TrimSpace(n)
	}
	return uniqueNames(trimmed)
}

// uniqueNames drops empty and repeated names, keeping first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
