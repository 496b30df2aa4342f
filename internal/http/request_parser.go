// Package http provides HTTP server and handler implementations.
//
// This file turns query strings into filter parameters. Bad values never
// produce an error: they fall back to defaults or are clamped.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"reposcan/internal/core"
)

// Query parameter names shared by the page, the partial and the export.
const (
	paramCategory    = "category"
	paramMinStars    = "min_stars"
	paramSearch      = "q"
	paramLastUpdated = "last_updated"
	paramTopN        = "n"
)

// maxSearchLength bounds the search term kept from a request.
const maxSearchLength = 200

// ParseFilterParams reads category, min_stars and q. An unknown category is
// kept as is and simply matches nothing. min_stars is clamped to
// [0, MaxStars(t)]; non-numeric values mean 0.
func ParseFilterParams(query url.Values, t *core.Table) core.FilterParams {
	p := core.DefaultFilter()

	if v := sanitizeInput(query.Get(paramCategory)); v != "" {
		p.Category = v
	}
	if v := strings.TrimSpace(query.Get(paramMinStars)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MinStars = core.ClampStars(t, n)
		}
	}
	p.Search = truncate(sanitizeInput(query.Get(paramSearch)), maxSearchLength)
	return p
}

// ParseBoolParam treats 1, true, on and yes as true. A missing parameter
// yields def.
func ParseBoolParam(query url.Values, key string, def bool) bool {
	if _, ok := query[key]; !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(query.Get(key))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// ParseTopN reads n, defaulting to def and capping at limit. Negative values
// become 0.
func ParseTopN(query url.Values, def, limit int) int {
	n := def
	if v := strings.TrimSpace(query.Get(paramTopN)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			n = parsed
		}
	}
	if n < 0 {
		n = 0
	}
	if n > limit {
		n = limit
	}
	return n
}

// FilterQuery encodes p back into query parameters. Default values are
// omitted so URLs stay short.
func FilterQuery(p core.FilterParams, includeLastUpdated bool) url.Values {
	q := url.Values{}
	if p.Category != "" && p.Category != core.AllCategories {
		q.Set(paramCategory, p.Category)
	}
	if p.MinStars > 0 {
		q.Set(paramMinStars, strconv.Itoa(p.MinStars))
	}
	if p.Search != "" {
		q.Set(paramSearch, p.Search)
	}
	if includeLastUpdated {
		q.Set(paramLastUpdated, "1")
	} else {
		q.Set(paramLastUpdated, "0")
	}
	return q
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// cut on a rune boundary
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
