package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dfryer1193/pictures/picture/domain"
)

var _ domain.DocumentStore = (*MemoryDocumentStore)(nil)

// MemoryDocumentStore keeps documents in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs: make(map[string]*domain.Document),
	}
}

func (m *MemoryDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return doc.Clone()
}

func (m *MemoryDocumentStore) Create(ctx context.Context, doc *domain.Document) (string, error) {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[stored.ID]; exists {
		return "", fmt.Errorf("%w: %s", domain.ErrConflict, stored.ID)
	}

	stored.Revision = domain.NewRevision(1)
	m.docs[stored.ID] = stored
	return stored.Revision, nil
}

func (m *MemoryDocumentStore) Query(ctx context.Context, filter domain.Filter) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.docs))
	for id, doc := range m.docs {
		if doc.Matches(filter) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	docs := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := m.docs[id].Clone()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
