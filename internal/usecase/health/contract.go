package health

import "context"

// DBPinger checks relational store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks search index availability.
type IndexChecker interface {
	Configured() bool
	Ping(ctx context.Context) error
}
