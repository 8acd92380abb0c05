package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dfryer1193/pictures/picture/domain"
	"github.com/dfryer1193/pictures/shared/db"
)

var _ domain.DocumentStore = (*SQLiteDocumentStore)(nil)

// SQLiteDocumentStore implements domain.DocumentStore on the documents table.
// Documents are stored as JSON in the data column; id, rev and type are
// duplicated into columns so they can be indexed.
type SQLiteDocumentStore struct {
	db *sql.DB
}

// NewSQLiteDocumentStore creates a store over an already migrated database
func NewSQLiteDocumentStore(sqlDB *sql.DB) *SQLiteDocumentStore {
	return &SQLiteDocumentStore{
		db: sqlDB,
	}
}

const getDocumentQuery = `
	SELECT rev, data
	FROM documents
	WHERE id = ?
`

// Get retrieves a single document by id
func (s *SQLiteDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var row documentRow
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, getDocumentQuery, id).Scan(&row.Rev, &row.Data)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return row.toDomain()
}

const createDocumentQuery = `
	INSERT INTO documents (id, rev, type, data)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

// Create inserts a new document. An existing row under the same id is left
// untouched and reported as domain.ErrConflict.
func (s *SQLiteDocumentStore) Create(ctx context.Context, doc *domain.Document) (string, error) {
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

	var docType any
	if stored.Type != "" {
		docType = stored.Type
	}

	res, err := db.GetExecutor(ctx, s.db).ExecContext(ctx, createDocumentQuery,
		stored.ID,
		stored.Revision,
		docType,
		string(data),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrConflict, stored.ID)
	}

	return stored.Revision, nil
}

// Query returns every document matching all constraints in filter. Reserved
// fields are matched on their columns, anything else on the JSON body.
func (s *SQLiteDocumentStore) Query(ctx context.Context, filter domain.Filter) ([]*domain.Document, error) {
	query, args, err := buildQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := db.GetExecutor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []*domain.Document{}
	for rows.Next() {
		var row documentRow
		if err := rows.Scan(&row.Rev, &row.Data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// buildQuery renders filter as a parameterised SELECT. Field names end up
// quoted inside a JSON path, so quotes and backslashes are refused.
func buildQuery(filter domain.Filter) (string, []any, error) {
	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("SELECT rev, data FROM documents")

	args := make([]any, 0, len(names))
	for i, name := range names {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}

		switch name {
		case domain.FieldID:
			b.WriteString("id = ?")
		case domain.FieldRevision:
			b.WriteString("rev = ?")
		case domain.FieldType:
			b.WriteString("type = ?")
		case domain.FieldSnapID:
			// literal path so idx_documents_snap_id applies
			b.WriteString("json_extract(data, '$.snap_id') = ?")
		default:
			if name == "" || strings.ContainsAny(name, `"\`) {
				return "", nil, fmt.Errorf("invalid filter field %q", name)
			}
			// only string values match, as in domain.Document.Matches
			path := `$."` + name + `"`
			b.WriteString("json_type(data, ?) = 'text' AND json_extract(data, ?) = ?")
			args = append(args, path, path)
		}
		args = append(args, filter[name])
	}
	b.WriteString(" ORDER BY id")

	return b.String(), args, nil
}

// documentRow is a private struct used to scan database rows
type documentRow struct {
	Rev  string `db:"rev"`
	Data string `db:"data"`
}

// toDomain decodes the JSON body; the rev column is authoritative
func (r *documentRow) toDomain() (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal([]byte(r.Data), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	doc.Revision = r.Rev
	return &doc, nil
}
