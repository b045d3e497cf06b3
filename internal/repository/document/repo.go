package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	"github.com/kailas-cloud/docindex/internal/domain"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
)

// Repo stores documents in the relational store.
type Repo struct {
	db sqlite.Querier
}

// New creates a document repository. db serves reads outside a transaction.
func New(db sqlite.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores a new document, assigns its id and marks it new.
func (r *Repo) Insert(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error {
	rw := toRow(doc)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO document (rubrics, text, created_at) VALUES (?, ?, ?)`,
		rw.Rubrics, rw.Text, rw.CreatedAt)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("document text: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert document: %w: %w", domain.ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert document: last id: %w: %w", domain.ErrStoreUnavailable, err)
	}
	doc.SetID(id)
	tx.MarkNew(doc)
	return nil
}

// Update rewrites text and rubrics of an existing document and marks it dirty.
func (r *Repo) Update(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error {
	rw := toRow(doc)
	res, err := tx.ExecContext(ctx,
		`UPDATE document SET rubrics = ?, text = ? WHERE id = ?`,
		rw.Rubrics, rw.Text, rw.ID)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("document text: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("update document %d: %w: %w", rw.ID, domain.ErrStoreUnavailable, err)
	}
	if err := expectOne(res, rw.ID); err != nil {
		return err
	}
	tx.MarkDirty(doc)
	return nil
}

// Delete removes a document and marks it deleted.
func (r *Repo) Delete(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM document WHERE id = ?`, doc.ID())
	if err != nil {
		return fmt.Errorf("delete document %d: %w: %w", doc.ID(), domain.ErrStoreUnavailable, err)
	}
	if err := expectOne(res, doc.ID()); err != nil {
		return err
	}
	tx.MarkDeleted(doc)
	return nil
}

// Get loads a document. q may be a transaction; nil uses the repository handle.
func (r *Repo) Get(ctx context.Context, q sqlite.Querier, id int64) (domdoc.Document, error) {
	if q == nil {
		q = r.db
	}
	rw, err := scanRow(q.QueryRowContext(ctx, `SELECT `+columns+` FROM document WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domdoc.Document{}, fmt.Errorf("document %d: %w", id, domain.ErrDocumentNotFound)
		}
		return domdoc.Document{}, fmt.Errorf("select document %d: %w: %w", id, domain.ErrStoreUnavailable, err)
	}
	return rw.toDomain(), nil
}

// ListByIDs returns the documents with the given ids, newest first
// (created_at DESC, id DESC). Unknown ids are skipped.
func (r *Repo) ListByIDs(ctx context.Context, ids []int64) ([]*domdoc.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM document WHERE id IN (`+placeholders+`) ORDER BY created_at DESC, id DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("select documents by id: %w: %w", domain.ErrStoreUnavailable, err)
	}
	docs, err := collect(rows)
	if err != nil {
		return nil, err
	}
	out := make([]*domdoc.Document, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

// ListAfter returns up to limit documents with id > afterID in ascending id order.
func (r *Repo) ListAfter(ctx context.Context, afterID int64, limit int) ([]domdoc.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM document WHERE id > ? ORDER BY id ASC LIMIT ?`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents after %d: %w: %w", afterID, domain.ErrStoreUnavailable, err)
	}
	return collect(rows)
}

// ListSearchable pages documents for reindexing.
func (r *Repo) ListSearchable(ctx context.Context, afterID int64, limit int) ([]domain.Searchable, error) {
	docs, err := r.ListAfter(ctx, afterID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Searchable, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

func collect(rows *sql.Rows) ([]domdoc.Document, error) {
	defer rows.Close()
	var out []domdoc.Document
	for rows.Next() {
		rw, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, rw.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}
