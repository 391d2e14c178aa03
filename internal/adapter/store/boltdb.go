package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"pyindent/internal/domain"
)

var ErrNotFound = errors.New("not found")

var (
	bucketDocs    = []byte("docs")
	bucketReports = []byte("reports")
	bucketMeta    = []byte("meta")
)

// BoltStore persists lint reports keyed by file path.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketReports, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type docMeta struct {
	ID      string `json:"id"`
	ModTime int64  `json:"mod_time"`
	Hash    string `json:"hash"`
}

type reportRecord struct {
	Lines    int              `json:"lines"`
	Findings []domain.Finding `json:"findings"`
}

// PutReport stores the document metadata and its findings in one
// transaction.
func (s *BoltStore) PutReport(report domain.FileReport) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(report.Doc.Path)

		meta, err := json.Marshal(docMeta{
			ID:      report.Doc.ID,
			ModTime: report.Doc.ModTime.Unix(),
			Hash:    report.Doc.Hash,
		})
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketDocs).Put(key, meta); err != nil {
			return err
		}

		data, err := json.Marshal(reportRecord{Lines: report.Lines, Findings: report.Findings})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketReports).Put(key, data)
	})
}

func (s *BoltStore) GetReport(path string) (domain.FileReport, error) {
	var report domain.FileReport
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := []byte(path)
		metaData := tx.Bucket(bucketDocs).Get(key)
		data := tx.Bucket(bucketReports).Get(key)
		if metaData == nil || data == nil {
			return fmt.Errorf("report for %s: %w", path, ErrNotFound)
		}

		var meta docMeta
		if err := json.Unmarshal(metaData, &meta); err != nil {
			return err
		}
		var rec reportRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}

		report = domain.FileReport{
			Doc:      decodeDoc(path, meta),
			Lines:    rec.Lines,
			Findings: rec.Findings,
		}
		return nil
	})
	return report, err
}

func (s *BoltStore) DeleteReport(path string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(path)
		if err := tx.Bucket(bucketDocs).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketReports).Delete(key)
	})
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, decodeDoc(string(k), meta))
			return nil
		})
	})
	return docs, err
}

// Reset drops every stored report but keeps schema metadata.
func (s *BoltStore) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketReports} {
			if err := tx.DeleteBucket(b); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func decodeDoc(path string, meta docMeta) domain.Document {
	return domain.Document{
		ID:      meta.ID,
		Path:    path,
		ModTime: time.Unix(meta.ModTime, 0),
		Hash:    meta.Hash,
	}
}
