package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dfryer1193/pictures/picture/domain"
	"go.etcd.io/bbolt"
)

var _ domain.DocumentStore = (*BBoltDocumentStore)(nil)

const documentsBucketName = "documents"

// BBoltDocumentStore implements domain.DocumentStore in a single bbolt bucket
// keyed by document id. Queries scan the bucket.
type BBoltDocumentStore struct {
	db *bbolt.DB
}

// OpenBBoltDocumentStore opens (creating if needed) the database file at path
func OpenBBoltDocumentStore(path string) (*BBoltDocumentStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(documentsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents bucket: %w", err)
	}

	return &BBoltDocumentStore{db: db}, nil
}

// Close releases the database file lock
func (s *BBoltDocumentStore) Close() error {
	return s.db.Close()
}

func (s *BBoltDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var doc *domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(documentsBucketName)).Get([]byte(id))
		if raw == nil {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}

		var err error
		doc, err = decodeDocument(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *BBoltDocumentStore) Create(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document cannot be nil")
	}

	if doc.ID == "" {
		return "", fmt.Errorf("document ID cannot be empty")
	}

	stored, err := doc.Clone()
	if err != nil {
		return "", err
	}
	stored.Revision = domain.NewRevision(1)

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentsBucketName))
		if bucket.Get([]byte(stored.ID)) != nil {
			return fmt.Errorf("%w: %s", domain.ErrConflict, stored.ID)
		}
		return bucket.Put([]byte(stored.ID), data)
	})
	if err != nil {
		return "", err
	}

	return stored.Revision, nil
}

func (s *BBoltDocumentStore) Query(ctx context.Context, filter domain.Filter) ([]*domain.Document, error) {
	docs := []*domain.Document{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(documentsBucketName)).ForEach(func(_, raw []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := decodeDocument(raw)
			if err != nil {
				return err
			}
			if doc.Matches(filter) {
				docs = append(docs, doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	return docs, nil
}

// decodeDocument copies out of the bbolt page before decoding; raw is only
// valid for the life of the transaction.
func decodeDocument(raw []byte) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(append([]byte(nil), raw...), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}
