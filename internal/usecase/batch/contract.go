package batch

import (
	"context"

	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
)

// DocumentWriter writes documents inside a transaction.
type DocumentWriter interface {
	Insert(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error
	Delete(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error
	Get(ctx context.Context, q sqlite.Querier, id int64) (domdoc.Document, error)
}

// TxRunner runs fn inside one relational transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sqlite.Tx) error) error
}
