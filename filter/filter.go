package filter

import (
	"strings"

	"proceedings-scraper/config"
	"proceedings-scraper/models"
)

// Filter applies filter criteria to records
type Filter struct {
	sessions []string
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.Config) *Filter {
	var sessions []string
	for _, s := range cfg.Filters.Sessions {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			sessions = append(sessions, s)
		}
	}
	return &Filter{
		sessions: sessions,
	}
}

// Active reports whether any criterion is configured
func (f *Filter) Active() bool {
	return len(f.sessions) > 0
}

// ApplyFilters filters records based on the configuration, keeping their order
func (f *Filter) ApplyFilters(records []models.AuthorshipRecord) []models.AuthorshipRecord {
	if !f.Active() {
		return records
	}

	var filtered []models.AuthorshipRecord
	for _, record := range records {
		if f.matchesFilters(record) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// matchesFilters checks whether the record's session contains any configured name
func (f *Filter) matchesFilters(record models.AuthorshipRecord) bool {
	session := strings.ToLower(record.Session)
	for _, s := range f.sessions {
		if strings.Contains(session, s) {
			return true
		}
	}
	return false
}
