package parser

import (
	"fmt"
	"strings"
)

// Marker vocabulary names accepted by Preset
const (
	PresetClassic = "classic"
	PresetSection = "section"
)

// Markers describes where the proceedings structure lives in the page.
// Session and item blocks are matched on tag name plus class; everything
// inside an item is located with CSS selectors relative to the item.
type Markers struct {
	SessionTags  []string `yaml:"session_tags"`  // Empty matches any tag
	SessionClass string   `yaml:"session_class"` // Required
	ItemTags     []string `yaml:"item_tags"`     // Empty matches any tag
	ItemClass    string   `yaml:"item_class"`    // Required

	TitleSelector       string `yaml:"title_selector"`
	AuthorsSelector     string `yaml:"authors_selector"`
	AuthorSelector      string `yaml:"author_selector"`
	NameSelector        string `yaml:"name_selector"`
	AffiliationSelector string `yaml:"affiliation_selector"`
	AffiliationAttr     string `yaml:"affiliation_attr"`
}

// ClassicMarkers matches the ACM Digital Library table of contents the way
// the plain HTTP variant does
func ClassicMarkers() Markers {
	return Markers{
		SessionTags:         []string{"h2", "div"},
		SessionClass:        "section__title",
		ItemTags:            []string{"h2", "div"},
		ItemClass:           "issue-item",
		TitleSelector:       "h5.issue-item__title",
		AuthorsSelector:     "ul.rlist--inline.loa",
		AuthorSelector:      "li",
		NameSelector:        "a.author-name",
		AffiliationSelector: "a.author-info",
		AffiliationAttr:     "title",
	}
}

// SectionMarkers matches on class alone, for pages where the session
// header sits in a generic section container
func SectionMarkers() Markers {
	return Markers{
		SessionClass:        "section__title",
		ItemClass:           "issue-item",
		TitleSelector:       ".issue-item__title",
		AuthorsSelector:     "ul.rlist--inline.loa",
		AuthorSelector:      "li",
		NameSelector:        "a.author-name",
		AffiliationSelector: "a.author-institution",
		AffiliationAttr:     "title",
	}
}

// Preset returns the markers registered under name
func Preset(name string) (Markers, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetClassic:
		return ClassicMarkers(), nil
	case PresetSection:
		return SectionMarkers(), nil
	default:
		return Markers{}, fmt.Errorf("unknown marker preset %q (must be %q or %q)", name, PresetClassic, PresetSection)
	}
}

// Merge overlays every non-empty field of override on top of m
func (m Markers) Merge(override Markers) Markers {
	if len(override.SessionTags) > 0 {
		m.SessionTags = override.SessionTags
	}
	if override.SessionClass != "" {
		m.SessionClass = override.SessionClass
	}
	if len(override.ItemTags) > 0 {
		m.ItemTags = override.ItemTags
	}
	if override.ItemClass != "" {
		m.ItemClass = override.ItemClass
	}
	if override.TitleSelector != "" {
		m.TitleSelector = override.TitleSelector
	}
	if override.AuthorsSelector != "" {
		m.AuthorsSelector = override.AuthorsSelector
	}
	if override.AuthorSelector != "" {
		m.AuthorSelector = override.AuthorSelector
	}
	if override.NameSelector != "" {
		m.NameSelector = override.NameSelector
	}
	if override.AffiliationSelector != "" {
		m.AffiliationSelector = override.AffiliationSelector
	}
	if override.AffiliationAttr != "" {
		m.AffiliationAttr = override.AffiliationAttr
	}
	return m
}

// Validate checks that every marker needed for a scan is set
func (m Markers) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"session_class", m.SessionClass},
		{"item_class", m.ItemClass},
		{"title_selector", m.TitleSelector},
		{"authors_selector", m.AuthorsSelector},
		{"author_selector", m.AuthorSelector},
		{"name_selector", m.NameSelector},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("marker %s must not be empty", r.key)
		}
	}
	if m.AffiliationSelector != "" && m.AffiliationAttr == "" {
		return fmt.Errorf("marker affiliation_attr must be set when affiliation_selector is")
	}
	return nil
}

// BlockSelector builds the group selector that visits session headers and
// items together, so the scan sees them in document order
func (m Markers) BlockSelector() string {
	parts := append(tagClassSelectors(m.SessionTags, m.SessionClass), tagClassSelectors(m.ItemTags, m.ItemClass)...)
	return strings.Join(parts, ", ")
}

func tagClassSelectors(tags []string, class string) []string {
	if len(tags) == 0 {
		return []string{"." + class}
	}
	selectors := make([]string, 0, len(tags))
	for _, tag := range tags {
		selectors = append(selectors, tag+"."+class)
	}
	return selectors
}
