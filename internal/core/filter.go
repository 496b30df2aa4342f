package core

import "strings"

// FilterParams are the three controls exposed to the presentation layer.
type FilterParams struct {
	Category string
	MinStars int
	Search   string
}

// DefaultFilter returns the identity filter.
func DefaultFilter() FilterParams {
	return FilterParams{Category: AllCategories}
}

// IsIdentity reports whether p selects every row.
func (p FilterParams) IsIdentity() bool {
	return p.Category == AllCategories && p.MinStars <= 0 && p.Search == ""
}

// Key returns a stable string form of p, usable as a cache key.
func (p FilterParams) Key() string {
	var b strings.Builder
	b.WriteString(p.Category)
	b.WriteByte(0)
	b.WriteString(itoa(p.MinStars))
	b.WriteByte(0)
	b.WriteString(p.Search)
	return b.String()
}

// Match reports whether a single row satisfies every active predicate.
func (p FilterParams) Match(r Repository) bool {
	if p.Category != AllCategories && r.Category != p.Category {
		return false
	}
	if r.Stars < p.MinStars {
		return false
	}
	if p.Search != "" && !containsFold(r.Description, p.Search) {
		return false
	}
	return true
}

// Filter returns the rows of t matching p, in source order.
func Filter(t *Table, p FilterParams) []Repository {
	out := make([]Repository, 0)
	if t == nil {
		return out
	}
	for _, r := range t.rows {
		if p.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// containsFold is a case-insensitive substring test. An empty haystack never
// contains a non-empty needle.
func containsFold(s, substr string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
