package search

import (
	"slices"

	"github.com/kailas-cloud/docindex/internal/domain"
)

// orderByRank sorts entities by their position in the index result.
// Input arrives newest first and the sort is stable, so equal ranks
// (the same id listed twice) keep the created_at order. Entities the
// index did not return are dropped.
func orderByRank[T domain.Searchable](items []T, ranks map[int64]int) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := ranks[it.ID()]; ok {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return ranks[a.ID()] - ranks[b.ID()]
	})
	return out
}

// missing returns the ids present in hits but absent from items.
func missing[T domain.Searchable](ids []int64, items []T) []int64 {
	found := make(map[int64]bool, len(items))
	for _, it := range items {
		found[it.ID()] = true
	}
	var out []int64
	for _, id := range ids {
		if !found[id] {
			out = append(out, id)
		}
	}
	return out
}
