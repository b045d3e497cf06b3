package indexsync

import (
	"context"

	"github.com/kailas-cloud/docindex/internal/db/sqlite"
	"github.com/kailas-cloud/docindex/internal/domain"
)

// Tracker captures the searchable part of a unit of work right before it
// commits and hands it to the dispatcher once the commit has succeeded.
type Tracker struct {
	registry   *domain.Registry
	dispatcher *Dispatcher
}

var _ sqlite.CommitHook = (*Tracker)(nil)

// NewTracker creates a tracker for the registered kinds.
func NewTracker(registry *domain.Registry, dispatcher *Dispatcher) *Tracker {
	return &Tracker{registry: registry, dispatcher: dispatcher}
}

// Capture keeps the pending records that are searchable and of a registered kind.
// It never modifies p.
func (t *Tracker) Capture(p sqlite.Pending) domain.ChangeSet {
	return domain.ChangeSet{
		Added:    t.filter(p.New),
		Modified: t.filter(p.Dirty),
		Deleted:  t.filter(p.Deleted),
	}
}

func (t *Tracker) filter(records []sqlite.Record) []domain.Searchable {
	var out []domain.Searchable
	for _, r := range records {
		s, ok := r.(domain.Searchable)
		if !ok {
			continue
		}
		if _, ok := t.registry.Lookup(s.Kind()); !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// BeforeCommit implements sqlite.CommitHook. The captured set lives only in
// the returned closure and is dispatched at most once.
func (t *Tracker) BeforeCommit(_ context.Context, p sqlite.Pending) (sqlite.AfterCommit, error) {
	cs := t.Capture(p)
	if cs.IsEmpty() {
		return nil, nil
	}
	pending := &cs
	return func(ctx context.Context) error {
		if pending == nil {
			return nil
		}
		set := *pending
		pending = nil
		return t.dispatcher.Dispatch(ctx, set)
	}, nil
}
