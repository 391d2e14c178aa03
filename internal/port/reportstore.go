package port

import "pyindent/internal/domain"

// ReportStore keeps lint reports between runs so unchanged files are not
// rescanned.
type ReportStore interface {
	PutReport(report domain.FileReport) error

	GetReport(path string) (domain.FileReport, error)

	DeleteReport(path string) error

	ListDocs() ([]domain.Document, error)

	// Reset drops every stored report.
	Reset() error

	Close() error
}
