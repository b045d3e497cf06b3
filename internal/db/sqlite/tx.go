package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrTxDone is returned when a finished transaction is used again.
	ErrTxDone = errors.New("sqlite: transaction already committed or rolled back")
	// ErrAfterCommit wraps failures of after-commit hooks. The data is committed.
	ErrAfterCommit = errors.New("sqlite: after-commit hook failed")
)

// Record is anything a unit of work can track.
type Record interface {
	Kind() string
	ID() int64
}

// Pending is the unit of work's view of tracked records at commit time.
// The three sets are disjoint.
type Pending struct {
	New     []Record
	Dirty   []Record
	Deleted []Record
}

// IsEmpty reports whether nothing is tracked.
func (p Pending) IsEmpty() bool {
	return len(p.New)+len(p.Dirty)+len(p.Deleted) == 0
}

// AfterCommit runs once the SQL commit has succeeded.
type AfterCommit func(ctx context.Context) error

// CommitHook observes a unit of work right before it commits.
// A non-nil error aborts the commit. The returned AfterCommit, if any,
// runs only when the commit succeeds.
type CommitHook interface {
	BeforeCommit(ctx context.Context, p Pending) (AfterCommit, error)
}

// CommitHookFunc adapts a function to CommitHook.
type CommitHookFunc func(ctx context.Context, p Pending) (AfterCommit, error)

// BeforeCommit calls f.
func (f CommitHookFunc) BeforeCommit(ctx context.Context, p Pending) (AfterCommit, error) {
	return f(ctx, p)
}

type recordState int

const (
	stateNew recordState = iota
	stateDirty
	stateDeleted
)

type recordKey struct {
	kind string
	id   int64
}

type tracked struct {
	rec   Record
	state recordState
}

// Tx is a unit of work: a SQL transaction plus the records marked in it.
type Tx struct {
	ctx   context.Context
	tx    *sql.Tx
	hooks []CommitHook

	order   []recordKey
	records map[recordKey]*tracked
	done    bool
}

func newTx(ctx context.Context, tx *sql.Tx, hooks []CommitHook) *Tx {
	return &Tx{
		ctx:     ctx,
		tx:      tx,
		hooks:   hooks,
		records: make(map[recordKey]*tracked),
	}
}

// ExecContext runs a statement inside the transaction.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.done {
		return nil, ErrTxDone
	}
	return t.tx.ExecContext(ctx, query, args...)
}

// QueryContext runs a query inside the transaction.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if t.done {
		return nil, ErrTxDone
	}
	return t.tx.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query inside the transaction.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	if t.done {
		return &Row{err: ErrTxDone}
	}
	return &Row{row: t.tx.QueryRowContext(ctx, query, args...)}
}

// MarkNew tracks a record inserted in this transaction.
func (t *Tx) MarkNew(r Record) {
	t.mark(r, stateNew)
}

// MarkDirty tracks a modified record. A record inserted in the same
// transaction stays new; a deleted one stays deleted.
func (t *Tx) MarkDirty(r Record) {
	if t.done {
		return
	}
	k := keyOf(r)
	if cur, ok := t.records[k]; ok {
		if cur.state != stateDeleted {
			cur.rec = r
		}
		return
	}
	t.mark(r, stateDirty)
}

// MarkDeleted tracks a deleted record. A record inserted in the same
// transaction is forgotten entirely.
func (t *Tx) MarkDeleted(r Record) {
	if t.done {
		return
	}
	k := keyOf(r)
	if cur, ok := t.records[k]; ok && cur.state == stateNew {
		t.forget(k)
		return
	}
	t.mark(r, stateDeleted)
}

func (t *Tx) mark(r Record, st recordState) {
	if t.done {
		return
	}
	k := keyOf(r)
	if cur, ok := t.records[k]; ok {
		cur.rec = r
		cur.state = st
		return
	}
	t.order = append(t.order, k)
	t.records[k] = &tracked{rec: r, state: st}
}

func (t *Tx) forget(k recordKey) {
	delete(t.records, k)
	for i, o := range t.order {
		if o == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// Pending returns the tracked records in marking order.
func (t *Tx) Pending() Pending {
	var p Pending
	for _, k := range t.order {
		tr := t.records[k]
		switch tr.state {
		case stateNew:
			p.New = append(p.New, tr.rec)
		case stateDirty:
			p.Dirty = append(p.Dirty, tr.rec)
		case stateDeleted:
			p.Deleted = append(p.Deleted, tr.rec)
		}
	}
	return p
}

// Commit runs the before-commit hooks, commits, then runs their
// after-commit callbacks. A hook error rolls the transaction back.
// After-commit failures are joined and wrapped with ErrAfterCommit.
func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}

	pending := t.Pending()
	afters := make([]AfterCommit, 0, len(t.hooks))
	for _, h := range t.hooks {
		after, err := h.BeforeCommit(t.ctx, pending)
		if err != nil {
			_ = t.Rollback()
			return fmt.Errorf("before commit: %w", err)
		}
		if after != nil {
			afters = append(afters, after)
		}
	}

	t.finish()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	var errs []error
	for _, after := range afters {
		if err := after(t.ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrAfterCommit, errors.Join(errs...))
	}
	return nil
}

// Rollback discards the transaction and everything tracked in it.
// Calling it on a finished transaction is a no-op.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.finish()
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.order = nil
	t.records = nil
}

func keyOf(r Record) recordKey {
	return recordKey{kind: r.Kind(), id: r.ID()}
}
