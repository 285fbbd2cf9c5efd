// util/generic.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

// Select returns a if sel is true and b otherwise.
func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	}
	return b
}

// SortedMapKeys returns the map's keys in increasing order.
func SortedMapKeys[K constraints.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// MapSlice returns a new slice holding xform applied to each element of
// from.
func MapSlice[F, T any](from []F, xform func(F) T) []T {
	to := make([]T, len(from))
	for i, item := range from {
		to[i] = xform(item)
	}
	return to
}

// FilterSlice returns a new slice with the elements of s for which pred
// returns true, in their original order.
func FilterSlice[V any](s []V, pred func(V) bool) []V {
	var filtered []V
	for _, item := range s {
		if pred(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
