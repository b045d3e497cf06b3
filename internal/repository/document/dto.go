package document

import (
	"time"

	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
)

const columns = "id, rubrics, text, created_at"

type scanner interface {
	Scan(dest ...any) error
}

// row is the storage shape of a document.
type row struct {
	ID        int64
	Rubrics   string
	Text      string
	CreatedAt int64 // unix nanoseconds, UTC; the index keeps milliseconds
}

func scanRow(s scanner) (row, error) {
	var r row
	err := s.Scan(&r.ID, &r.Rubrics, &r.Text, &r.CreatedAt)
	return r, err
}

func (r row) toDomain() domdoc.Document {
	return domdoc.Reconstruct(r.ID, r.Text, r.Rubrics, time.Unix(0, r.CreatedAt).UTC())
}

func toRow(d *domdoc.Document) row {
	return row{
		ID:        d.ID(),
		Rubrics:   d.Rubrics(),
		Text:      d.Text(),
		CreatedAt: d.CreatedAt().UnixNano(),
	}
}
