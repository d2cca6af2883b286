package parser

import (
	"errors"
	"fmt"
	"strings"

	"proceedings-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoMarkers is returned when the page holds neither a session header nor
// an item block, which usually means the page layout changed
var ErrNoMarkers = errors.New("no session or item markers found in page")

// Result holds the output of one extraction pass
type Result struct {
	Records  []models.AuthorshipRecord
	Sessions []string // Session headers in document order, including ones without papers
	Items    int      // Item blocks visited, including skipped ones
}

// Parser extracts authorship records from a proceedings page
type Parser struct {
	markers Markers
}

// NewParser creates a new Parser for the given marker vocabulary
func NewParser(markers Markers) (*Parser, error) {
	if err := markers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid markers: %w", err)
	}
	return &Parser{markers: markers}, nil
}

// ParseHTML scans the page once, top to bottom, and emits one record per
// author of every item that has a title and an authors list
func (p *Parser) ParseHTML(htmlContent string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	blocks := doc.Find(p.markers.BlockSelector())
	if blocks.Length() == 0 {
		return nil, ErrNoMarkers
	}

	result := &Result{}
	currentSession := ""

	blocks.Each(func(i int, s *goquery.Selection) {
		if matchesMarker(s, p.markers.SessionTags, p.markers.SessionClass) {
			currentSession = strings.TrimSpace(s.Text())
			result.Sessions = append(result.Sessions, currentSession)
			return
		}

		result.Items++
		result.Records = append(result.Records, p.extractItem(s, currentSession)...)
	})

	return result, nil
}

// extractItem returns the records of a single item block
func (p *Parser) extractItem(s *goquery.Selection, session string) []models.AuthorshipRecord {
	titleElem := s.Find(p.markers.TitleSelector).First()
	if titleElem.Length() == 0 {
		return nil // Not a paper entry
	}
	title := strings.TrimSpace(titleElem.Text())

	authorsElem := s.Find(p.markers.AuthorsSelector).First()
	if authorsElem.Length() == 0 {
		return nil
	}

	var records []models.AuthorshipRecord
	authorsElem.Find(p.markers.AuthorSelector).Each(func(i int, author *goquery.Selection) {
		nameElem := author.Find(p.markers.NameSelector).First()
		if nameElem.Length() == 0 {
			return
		}

		records = append(records, models.AuthorshipRecord{
			Session:           session,
			PaperTitle:        title,
			AuthorName:        strings.TrimSpace(nameElem.Text()),
			AuthorAffiliation: p.extractAffiliation(author),
		})
	})

	return records
}

// extractAffiliation reads the affiliation attribute of the author's info
// element, empty when either is missing
func (p *Parser) extractAffiliation(author *goquery.Selection) string {
	if p.markers.AffiliationSelector == "" {
		return ""
	}
	info := author.Find(p.markers.AffiliationSelector).First()
	if info.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(info.AttrOr(p.markers.AffiliationAttr, ""))
}

// matchesMarker reports whether s carries class and, when tags is set, one of the tags
func matchesMarker(s *goquery.Selection, tags []string, class string) bool {
	if !s.HasClass(class) {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	name := goquery.NodeName(s)
	for _, tag := range tags {
		if strings.EqualFold(tag, name) {
			return true
		}
	}
	return false
}
