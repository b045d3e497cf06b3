package document

import (
	"context"

	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	"github.com/kailas-cloud/docindex/internal/domain"
	domdoc "github.com/kailas-cloud/docindex/internal/domain/document"
	"github.com/kailas-cloud/docindex/internal/usecase/indexsync"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Insert(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error
	Update(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error
	Delete(ctx context.Context, tx *sqlite.Tx, doc *domdoc.Document) error
	Get(ctx context.Context, q sqlite.Querier, id int64) (domdoc.Document, error)
	Count(ctx context.Context) (int, error)
	ListSearchable(ctx context.Context, afterID int64, limit int) ([]domain.Searchable, error)
}

// TxRunner runs fn inside one relational transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sqlite.Tx) error) error
}

// IndexSync exposes the index operations that are not driven by commits.
type IndexSync interface {
	RemoveDocument(ctx context.Context, kindName string, id int64) error
	ReindexAll(ctx context.Context, kindName string, src indexsync.Source) (int, error)
}
