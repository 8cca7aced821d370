// Package ordering holds the ordinal arithmetic behind per-category award
// ranking. Every category keeps a dense 0..n-1 sequence; the helpers here
// compute slots, splice moves and date sorts without touching storage, so the
// server and the client reconciler share one implementation.
package ordering

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var ErrIndexOutOfRange = errors.New("index out of range")

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Asc, Desc:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// Toggle returns the direction a date-sort click switches to. Anything that
// is not Desc (including unset) switches to Desc.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// DateKey encodes (year, month) as year*100+month. The encoding is a total
// order only while month stays within 1..12.
func DateKey(year, month int) int {
	return year*100 + month
}

// InsertPosition returns the slot for a new entry given the date keys of its
// siblings sorted most recent first. The new entry takes the first slot whose
// sibling is not newer than it, so equal dates insert before the existing
// entry. An entry older than every sibling is appended.
func InsertPosition(keys []int, newKey int) int {
	for i, k := range keys {
		if newKey >= k {
			return i
		}
	}
	return len(keys)
}

// Move removes the element at from and reinserts it at to, returning a new
// slice. The input is not modified.
func Move[T any](seq []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		return nil, fmt.Errorf("move %d -> %d in %d items: %w", from, to, len(seq), ErrIndexOutOfRange)
	}

	out := make([]T, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)
	return slices.Insert(out, to, seq[from]), nil
}

// SortByDate returns a copy of seq stably sorted by key in the given direction.
func SortByDate[T any](seq []T, key func(T) int, dir Direction) []T {
	out := slices.Clone(seq)
	slices.SortStableFunc(out, func(a, b T) int {
		if dir == Asc {
			return cmp.Compare(key(a), key(b))
		}
		return cmp.Compare(key(b), key(a))
	})
	return out
}

// Normalize returns a copy of seq stably sorted by the order each element
// carries. Callers renumber the result to obtain a dense sequence.
func Normalize[T any](seq []T, order func(T) int) []T {
	out := slices.Clone(seq)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(order(a), order(b))
	})
	return out
}

// Renumber sets each element's order to its index.
func Renumber[T any](seq []T, set func(*T, int)) {
	for i := range seq {
		set(&seq[i], i)
	}
}

// Dense reports whether orders holds every value of 0..len-1 exactly once.
func Dense(orders []int) bool {
	seen := make([]bool, len(orders))
	for _, o := range orders {
		if o < 0 || o >= len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
