package memstore

import (
	"fmt"
	"sort"
	"sync"

	"pyindent/internal/adapter/store"
	"pyindent/internal/domain"
)

// MemoryStore keeps lint reports in memory. It backs `lint --no-cache` and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]domain.FileReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string]domain.FileReport),
	}
}

func (s *MemoryStore) PutReport(report domain.FileReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.Findings = append([]domain.Finding(nil), report.Findings...)
	s.reports[report.Doc.Path] = report
	return nil
}

func (s *MemoryStore) GetReport(path string) (domain.FileReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[path]
	if !ok {
		return domain.FileReport{}, fmt.Errorf("report for %s: %w", path, store.ErrNotFound)
	}
	return report, nil
}

func (s *MemoryStore) DeleteReport(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, path)
	return nil
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.reports))
	for _, r := range s.reports {
		docs = append(docs, r.Doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = make(map[string]domain.FileReport)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
