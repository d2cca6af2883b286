package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"proceedings-scraper/models"
)

// Header is the fixed column order of the CSV file
var Header = []string{"session", "paper_title", "author_name", "author_affiliation"}

// Summary describes what a write produced
type Summary struct {
	Path    string
	Records int
	Papers  int // Distinct paper titles
}

// WriteError is returned when the output file cannot be written
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteCSV writes records to path, replacing any existing file. Rows use
// CRLF line endings and standard quoting; text is written as UTF-8.
func WriteCSV(records []models.AuthorshipRecord, path string) (Summary, error) {
	f, err := os.Create(path)
	if err != nil {
		return Summary{}, &WriteError{Path: path, Err: err}
	}

	if err := writeRecords(f, records); err != nil {
		f.Close()
		return Summary{}, &WriteError{Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return Summary{}, &WriteError{Path: path, Err: err}
	}

	return Summary{
		Path:    path,
		Records: len(records),
		Papers:  models.DistinctPapers(records),
	}, nil
}

func writeRecords(f *os.File, records []models.AuthorshipRecord) error {
	w := csv.NewWriter(f)
	w.UseCRLF = true

	if err := w.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Session, r.PaperTitle, r.AuthorName, r.AuthorAffiliation}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
