package persistence

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dfryer1193/pictures/picture/domain"
	"github.com/dfryer1193/pictures/shared/db"
	"github.com/dfryer1193/pictures/shared/db/sqlite"
)

// Supported store backends
const (
	BackendSQLite = "sqlite"
	BackendBBolt  = "bbolt"
	BackendMemory = "memory"
)

// Backend bundles an opened document store with the means to run work
// transactionally against it and to release it.
type Backend struct {
	Store   domain.DocumentStore
	RunInTx domain.TxFunc
	close   func() error
}

// Close releases the resources held by the backend
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the named backend.
//
//	"sqlite" - SQLite database at sqlitePath, or dataDir/pictures.db when empty (default)
//	"bbolt"  - bbolt database at dataDir/pictures.bolt
//	"memory" - in-memory (ephemeral, for testing)
func OpenBackend(name, dataDir, sqlitePath string) (*Backend, error) {
	switch name {
	case BackendSQLite, "":
		if sqlitePath == "" {
			sqlitePath = filepath.Join(dataDir, "pictures.db")
		}
		database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: sqlitePath})
		if err := database.Connect(); err != nil {
			return nil, err
		}
		return &Backend{
			Store:   NewSQLiteDocumentStore(database.DB()),
			RunInTx: db.TxRunner(database.DB()),
			close:   database.Close,
		}, nil
	case BackendBBolt:
		store, err := OpenBBoltDocumentStore(filepath.Join(dataDir, "pictures.bolt"))
		if err != nil {
			return nil, err
		}
		return &Backend{
			Store:   store,
			RunInTx: runDirect,
			close:   store.Close,
		}, nil
	case BackendMemory:
		return &Backend{
			Store:   NewMemoryDocumentStore(),
			RunInTx: runDirect,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: sqlite, bbolt, memory)", name)
	}
}

func runDirect(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
