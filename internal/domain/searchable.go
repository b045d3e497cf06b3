package domain

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Searchable is a relational record whose kind is mirrored into the search index.
type Searchable interface {
	Kind() string
	ID() int64
	CreatedAt() time.Time
	// FieldValue returns the current value of a declared searchable field.
	FieldValue(name string) (string, bool)
}

// SearchKind describes how one searchable kind maps onto the search index.
type SearchKind struct {
	Name   string   // record kind, equals the table name
	Index  string   // search index name
	Fields []string // searchable fields, in declaration order
}

// Validate checks that the kind can be registered.
func (k SearchKind) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("kind name is required: %w", ErrUnknownKind)
	}
	if k.Index == "" {
		return fmt.Errorf("kind %q: index name is required", k.Name)
	}
	if len(k.Fields) == 0 {
		return fmt.Errorf("kind %q: at least one searchable field is required", k.Name)
	}
	seen := make(map[string]bool, len(k.Fields))
	for _, f := range k.Fields {
		if f == "" {
			return fmt.Errorf("kind %q: empty field name", k.Name)
		}
		if f == CreatedAtField {
			return fmt.Errorf("kind %q: field name %q is reserved", k.Name, f)
		}
		if seen[f] {
			return fmt.Errorf("kind %q: duplicate field %q", k.Name, f)
		}
		seen[f] = true
	}
	return nil
}

// CreatedAtField is the sortable attribute every index document carries.
const CreatedAtField = "created_at"

// IndexDocument is the projection of a Searchable sent to the index.
type IndexDocument struct {
	ID        int64
	Fields    map[string]string
	CreatedAt time.Time
}

// NewIndexDocument projects an entity onto its kind's declared fields.
// Fields the entity cannot supply are indexed as empty strings.
func NewIndexDocument(kind SearchKind, e Searchable) (IndexDocument, error) {
	if e.Kind() != kind.Name {
		return IndexDocument{}, fmt.Errorf("entity kind %q does not match %q: %w", e.Kind(), kind.Name, ErrUnknownKind)
	}
	fields := make(map[string]string, len(kind.Fields))
	for _, name := range kind.Fields {
		v, _ := e.FieldValue(name)
		fields[name] = v
	}
	return IndexDocument{ID: e.ID(), Fields: fields, CreatedAt: e.CreatedAt()}, nil
}

// Hits is the ordered result of an index query.
// The relevance rank of an id is its position in IDs.
type Hits struct {
	IDs   []int64
	Total int
	// Unavailable is set when no index backend could answer the query.
	Unavailable bool
}

// Ranks maps every id to its relevance rank.
func (h Hits) Ranks() map[int64]int {
	m := make(map[int64]int, len(h.IDs))
	for i, id := range h.IDs {
		if _, dup := m[id]; !dup {
			m[id] = i
		}
	}
	return m
}

// Registry holds the searchable kinds known to the process.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]SearchKind
}

// NewRegistry creates a registry with the given kinds.
func NewRegistry(kinds ...SearchKind) (*Registry, error) {
	r := &Registry{kinds: make(map[string]SearchKind, len(kinds))}
	for _, k := range kinds {
		if err := r.Register(k); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a kind. Registering the same name twice is an error.
func (r *Registry) Register(k SearchKind) error {
	if err := k.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[k.Name]; ok {
		return fmt.Errorf("kind %q: %w", k.Name, ErrAlreadyExists)
	}
	fields := make([]string, len(k.Fields))
	copy(fields, k.Fields)
	k.Fields = fields
	r.kinds[k.Name] = k
	return nil
}

// Lookup returns the registered kind by name.
func (r *Registry) Lookup(name string) (SearchKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns all registered kinds sorted by name.
func (r *Registry) Kinds() []SearchKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SearchKind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
