package arxiv

import "time"

// Paper is one arXiv record as surfaced to the rest of the bot.
type Paper struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Abstract        string    `json:"abstract"`
	Published       time.Time `json:"published"`
	PrimaryCategory string    `json:"primary_category"`
	Categories      []string  `json:"categories"`
	JournalRef      string    `json:"journal_ref,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	PDFURL          string    `json:"pdf_url"`
	AbsURL          string    `json:"abs_url"`
}

// SortCriterion selects how the search endpoint orders results.
type SortCriterion int

const (
	SortRelevance SortCriterion = iota
	SortSubmittedDesc
	SortSubmittedAsc
)

func (s SortCriterion) params() (by, order string) {
	switch s {
	case SortSubmittedDesc:
		return "submittedDate", "descending"
	case SortSubmittedAsc:
		return "submittedDate", "ascending"
	default:
		return "relevance", "descending"
	}
}
