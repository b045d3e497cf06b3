package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/docindex/internal/db"
)

// PutDocument stores the document as a hash under the index key prefix.
// Existing fields are overwritten, so the call doubles as an update.
func (s *Store) PutDocument(ctx context.Context, index string, doc *db.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if len(doc.Text)+len(doc.Numeric) == 0 {
		return fmt.Errorf("document %s has no fields", doc.ID)
	}

	cmd := s.b().Hset().Key(s.docKey(index, doc.ID)).FieldValue()
	for k, v := range doc.Text {
		cmd = cmd.FieldValue(k, v)
	}
	for k, v := range doc.Numeric {
		cmd = cmd.FieldValue(k, strconv.FormatFloat(v, 'f', -1, 64))
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// DeleteDocument removes the document hash. A missing key is not an error.
func (s *Store) DeleteDocument(ctx context.Context, index, id string) error {
	cmd := s.b().Del().Key(s.docKey(index, id)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
