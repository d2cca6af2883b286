package models

// AuthorshipRecord is one (session, paper, author) row of the proceedings
type AuthorshipRecord struct {
	Session           string
	PaperTitle        string
	AuthorName        string
	AuthorAffiliation string // Empty when the page lists no affiliation
}

// DistinctPapers counts the distinct paper titles across records
func DistinctPapers(records []AuthorshipRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.PaperTitle] = struct{}{}
	}
	return len(seen)
}

// Sessions returns the distinct session names in first-seen order
func Sessions(records []AuthorshipRecord) []string {
	var sessions []string
	seen := make(map[string]bool)
	for _, r := range records {
		if seen[r.Session] {
			continue
		}
		seen[r.Session] = true
		sessions = append(sessions, r.Session)
	}
	return sessions
}
