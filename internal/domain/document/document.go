package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/docindex/internal/domain"
)

// MaxTextSize is the maximum document text size in bytes.
const MaxTextSize = 163840 // 160KB

// MaxRubricsSize is the maximum size of the rubrics line in bytes.
const MaxRubricsSize = 1024

// KindName is the record kind and table name of documents.
const KindName = "document"

// Field names. Only FieldText is indexed; rubrics are stored and returned
// but never matched by search.
const (
	FieldText    = "text"
	FieldRubrics = "rubrics"
)

// SearchKind returns the index registration for documents.
func SearchKind() domain.SearchKind {
	return domain.SearchKind{
		Name:   KindName,
		Index:  KindName,
		Fields: []string{FieldText},
	}
}

// Document is the searchable document entity.
type Document struct {
	id        int64
	text      string
	rubrics   string
	createdAt time.Time
}

var _ domain.Searchable = (*Document)(nil)

// New validates and creates a Document that has not been stored yet.
func New(text, rubrics string, createdAt time.Time) (Document, error) {
	if err := validate(text, rubrics); err != nil {
		return Document{}, err
	}
	return Document{
		text:      text,
		rubrics:   strings.TrimSpace(rubrics),
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id int64, text, rubrics string, createdAt time.Time) Document {
	return Document{id: id, text: text, rubrics: rubrics, createdAt: createdAt}
}

// Kind returns the record kind.
func (d *Document) Kind() string { return KindName }

// ID returns the store-assigned identifier (0 until inserted).
func (d *Document) ID() int64 { return d.id }

// Text returns the document body.
func (d *Document) Text() string { return d.text }

// Rubrics returns the document rubrics line.
func (d *Document) Rubrics() string { return d.rubrics }

// CreatedAt returns the creation timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// FieldValue returns the value of a searchable field.
func (d *Document) FieldValue(name string) (string, bool) {
	switch name {
	case FieldText:
		return d.text, true
	case FieldRubrics:
		return d.rubrics, true
	default:
		return "", false
	}
}

// SetID sets the identifier once the store has assigned it.
func (d *Document) SetID(id int64) { d.id = id }

// Update replaces text and rubrics after validation.
func (d *Document) Update(text, rubrics string) error {
	if err := validate(text, rubrics); err != nil {
		return err
	}
	d.text = text
	d.rubrics = strings.TrimSpace(rubrics)
	return nil
}

func validate(text, rubrics string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required: %w", domain.ErrInvalidDocument)
	}
	if len(text) > MaxTextSize {
		return fmt.Errorf("text too large (max %d bytes): %w", MaxTextSize, domain.ErrInvalidDocument)
	}
	if len(rubrics) > MaxRubricsSize {
		return fmt.Errorf("rubrics too large (max %d bytes): %w", MaxRubricsSize, domain.ErrInvalidDocument)
	}
	return nil
}
