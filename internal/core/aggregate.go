package core

import (
	"slices"
	"sort"
	"strconv"
)

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryCounts groups every row of t by category. Rows without a category
// are counted under MissingCategory so the values always sum to t.Len().
func CategoryCounts(t *Table) map[string]int {
	counts := make(map[string]int)
	if t == nil {
		return counts
	}
	for _, r := range t.rows {
		key := r.Category
		if !r.HasCategory() {
			key = MissingCategory
		}
		counts[key]++
	}
	return counts
}

// SortedCategoryCounts orders the distribution by count descending, then by
// label, for chart rendering.
func SortedCategoryCounts(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Category: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopByStars returns up to n rows with the most stars, descending. Rows with
// equal stars keep their source order. A negative n is treated as zero.
func TopByStars(t *Table, n int) []Repository {
	if t == nil || n <= 0 {
		return []Repository{}
	}
	rows := t.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Stars > rows[j].Stars
	})
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n:n]
}

// Categories returns the distinct non-empty categories in lexicographic order.
func Categories(t *Table) []string {
	if t == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t.rows {
		if !r.HasCategory() {
			continue
		}
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	slices.Sort(out)
	return out
}

// MaxStars returns the largest star count in t, or 0 for an empty table.
func MaxStars(t *Table) int {
	top := 0
	if t == nil {
		return top
	}
	for _, r := range t.rows {
		if r.Stars > top {
			top = r.Stars
		}
	}
	return top
}

// ClampStars bounds v to [0, MaxStars(t)].
func ClampStars(t *Table, v int) int {
	if v < 0 {
		return 0
	}
	if m := MaxStars(t); v > m {
		return m
	}
	return v
}

func itoa(v int) string { return strconv.Itoa(v) }
