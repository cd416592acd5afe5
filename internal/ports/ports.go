package ports

import (
	"context"

	"JudgmentScanner/internal/domain"
)

// ListingSource yields detail-page links for one results page.
type ListingSource interface {
	Links(ctx context.Context, page int) []string
	DetailURL(href string) string
}

// DetailPage is a parsed case detail page.
type DetailPage interface {
	Title() (string, error)
	PDFURL() (string, error)
}

// DetailSource loads case detail pages.
type DetailSource interface {
	Fetch(ctx context.Context, detailURL string) (DetailPage, error)
}

// Acquirer downloads the transcript PDF for a record.
type Acquirer interface {
	Acquire(ctx context.Context, rec domain.CaseRecord) (domain.CaseRecord, error)
}

// FieldExtractor reads judge, case number and date from the downloaded transcript.
type FieldExtractor interface {
	Extract(ctx context.Context, rec domain.CaseRecord) (domain.CaseRecord, error)
}

// Enricher is an LLM completion endpoint: text in, text out.
type Enricher interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CaseRepository is the persistence side of the case pipeline.
type CaseRepository interface {
	StoredTitles(ctx context.Context) (map[string]struct{}, error)
	ResolveJudgeID(ctx context.Context, name string) (int, error)
	SaveCases(ctx context.Context, rows []domain.CaseRow) (int, error)
}

// JudgeRepository persists judge directory entries.
type JudgeRepository interface {
	SaveJudges(ctx context.Context, judges []domain.Judge) (int, error)
}

// CaseReader serves read-only queries for the API.
type CaseReader interface {
	ListCases(ctx context.Context) ([]domain.StoredCase, error)
	CaseByNumber(ctx context.Context, caseNo string) (*domain.StoredCase, error)
	ListJudges(ctx context.Context, filters map[string]int) ([]domain.StoredJudge, error)
	JudgeByID(ctx context.Context, id int) (*domain.StoredJudge, error)
	ListCircuits(ctx context.Context) ([]domain.Reference, error)
	ListJudgeTypes(ctx context.Context) ([]domain.Reference, error)
}

// Notifier publishes a short report once a run has finished.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}
