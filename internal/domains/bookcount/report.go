package bookcount

import "github.com/google/uuid"

// Correction records a drifted counter that verification overwrote
type Correction struct {
	AuthorID uuid.UUID `json:"author_id"`
	Stored   int       `json:"stored"`
	Actual   int       `json:"actual"`
}

// Failure is an author the reconciliation pass could not verify
type Failure struct {
	AuthorID uuid.UUID `json:"author_id"`
	Error    string    `json:"error"`
}

// Report summarises one reconciliation pass
type Report struct {
	Checked     int          `json:"checked"`
	Corrections []Correction `json:"corrections"`
	Failures    []Failure    `json:"failures"`
}

func newReport() *Report {
	return &Report{
		Corrections: []Correction{},
		Failures:    []Failure{},
	}
}
