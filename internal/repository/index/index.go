package index

import (
	"fmt"

	"github.com/kailas-cloud/docindex/internal/db"
	"github.com/kailas-cloud/docindex/internal/domain"
)

// buildIndex creates the backend index definition for a searchable kind:
// one TEXT field per declared field plus a sortable created_at.
func buildIndex(kind domain.SearchKind) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(kind.Index).
		Text(kind.Fields...).
		NumericSortable(domain.CreatedAtField).
		Build()
	if err != nil {
		return nil, fmt.Errorf("index definition for %s: %w", kind.Name, err)
	}
	return def, nil
}

func toBackendDocument(d domain.IndexDocument) *db.Document {
	return &db.Document{
		ID:      formatID(d.ID),
		Text:    d.Fields,
		Numeric: map[string]float64{domain.CreatedAtField: float64(d.CreatedAt.UnixMilli())},
	}
}
