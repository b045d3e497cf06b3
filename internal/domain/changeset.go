package domain

// ChangeSet is the transaction-scoped capture of searchable entities
// added, modified and deleted in one commit. The three sets are disjoint.
type ChangeSet struct {
	Added    []Searchable
	Modified []Searchable
	Deleted  []Searchable
}

// IsEmpty reports whether the set carries no changes.
func (c *ChangeSet) IsEmpty() bool {
	return c == nil || len(c.Added)+len(c.Modified)+len(c.Deleted) == 0
}

// Len returns the total number of captured entities.
func (c *ChangeSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Added) + len(c.Modified) + len(c.Deleted)
}
