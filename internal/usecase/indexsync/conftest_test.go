package indexsync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/docindex/internal/domain"
)

type call struct {
	op   string // "index" / "remove" / "ensure"
	kind string
	id   int64
}

// mockIndexer records calls and fails on the configured ids.
type mockIndexer struct {
	mu           sync.Mutex
	unconfigured bool
	calls        []call
	failOn       map[int64]error
	ensureErr    error
}

func (m *mockIndexer) Configured() bool { return !m.unconfigured }

func (m *mockIndexer) EnsureIndex(_ context.Context, kind domain.SearchKind) error {
	m.record(call{"ensure", kind.Name, 0})
	return m.ensureErr
}

func (m *mockIndexer) IndexDocument(_ context.Context, kind domain.SearchKind, e domain.Searchable) error {
	m.record(call{"index", kind.Name, e.ID()})
	return m.failOn[e.ID()]
}

func (m *mockIndexer) RemoveDocument(_ context.Context, kind domain.SearchKind, id int64) error {
	m.record(call{"remove", kind.Name, id})
	return m.failOn[id]
}

func (m *mockIndexer) record(c call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockIndexer) ids(op string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for _, c := range m.calls {
		if c.op == op {
			out = append(out, c.id)
		}
	}
	return out
}

func (m *mockIndexer) sortedIDs(op string) []int64 {
	out := m.ids(op)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type note struct {
	id int64
}

func (n *note) Kind() string                     { return "note" }
func (n *note) ID() int64                        { return n.id }
func (n *note) CreatedAt() time.Time             { return time.Unix(n.id, 0) }
func (n *note) FieldValue(string) (string, bool) { return "", true }

// plainRecord is tracked by the store but not searchable.
type plainRecord struct{ id int64 }

func (p plainRecord) Kind() string { return "audit" }
func (p plainRecord) ID() int64    { return p.id }

// unregistered is searchable but its kind is not registered.
type unregistered struct{ note }

func (u *unregistered) Kind() string { return "draft" }

// sliceSource pages over a fixed slice sorted by id.
type sliceSource struct {
	items []domain.Searchable
	err   error
}

func (s *sliceSource) ListSearchable(_ context.Context, afterID int64, limit int) ([]domain.Searchable, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Searchable
	for _, e := range s.items {
		if e.ID() > afterID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

var errBackend = errors.New("backend down")

func newRegistry() *domain.Registry {
	reg, err := domain.NewRegistry(domain.SearchKind{Name: "note", Index: "notes", Fields: []string{"body"}})
	if err != nil {
		panic(err)
	}
	return reg
}

func notes(ids ...int64) []domain.Searchable {
	out := make([]domain.Searchable, len(ids))
	for i, id := range ids {
		out[i] = &note{id: id}
	}
	return out
}
