package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"reposcan/internal/content"
	"reposcan/internal/core"
	applog "reposcan/internal/log"
	"reposcan/internal/middleware/trace"
	"reposcan/internal/services"
)

// rowView is one table row as displayed.
type rowView struct {
	Name        string
	Description string
	Stars       int
	Language    string
	Category    string
	LastUpdated string
}

// repositoriesView feeds the "repositories" partial.
type repositoriesView struct {
	Count              int
	Rows               []rowView
	ExportURL          string
	IncludeLastUpdated bool
}

type dashboardView struct {
	Page         content.Page
	Categories   []string
	MaxStars     int
	Filter       core.FilterParams
	Repositories repositoriesView
	Counts       map[string]int
	TotalRows    int
	LoadedAt     string
	TopN         int
}

func (s *Server) repositoriesView(p core.FilterParams, includeLastUpdated bool) repositoriesView {
	rows := s.filteredView(p)
	v := repositoriesView{
		Count:              len(rows),
		Rows:               make([]rowView, 0, len(rows)),
		ExportURL:          withQuery("/export.csv", FilterQuery(p, includeLastUpdated).Encode()),
		IncludeLastUpdated: includeLastUpdated,
	}
	for _, r := range rows {
		v.Rows = append(v.Rows, rowView{
			Name:        r.Name,
			Description: r.Description,
			Stars:       r.Stars,
			Language:    r.Language,
			Category:    r.Category,
			LastUpdated: s.table.LastUpdatedFor(r),
		})
	}
	return v
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	p := ParseFilterParams(q, s.table)
	data := dashboardView{
		Page:         s.page,
		Categories:   s.categories,
		MaxStars:     s.maxStars,
		Filter:       p,
		Repositories: s.repositoriesView(p, ParseBoolParam(q, paramLastUpdated, true)),
		Counts:       s.counts,
		TotalRows:    s.table.Len(),
		TopN:         s.topN,
	}
	if !s.table.LoadedAt().IsZero() {
		data.LoadedAt = s.table.LoadedAt().Format(core.LastUpdatedLayout)
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard_page", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			applog.FieldError, err, applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleRepositories renders the filtered table partial swapped in by HTMX.
func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	if s.templates == nil {
		ServiceUnavailableError("Templates not loaded").Write(w)
		return
	}

	q := r.URL.Query()
	p := ParseFilterParams(q, s.table)
	includeLU := ParseBoolParam(q, paramLastUpdated, true)
	view := s.repositoriesView(p, includeLU)

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Filtered view rendered",
		applog.NewFields().
			WithFilter(p.Category, p.MinStars, p.Search).
			WithRowCount(view.Count).
			WithOperation(applog.OpFilter).
			WithComponent(applog.ComponentTable).
			ToSlice()...)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "repositories", view); err != nil {
		s.logger.ErrorContext(r.Context(), "Repositories template execution failed",
			applog.FieldError, err, applog.FieldComponent, applog.ComponentTemplate)
		InternalServerError("Error rendering repositories").
			TriggerErrorNotification("Could not render the table").
			Write(w)
		return
	}

	resp := NewHTMXResponse().
		BodyHTML(buf.Bytes()).
		TriggerRepositoriesFiltered(view.Count, view.ExportURL)
	if r.Header.Get("HX-Request") == "true" {
		resp.PushURL(withQuery("/", FilterQuery(p, includeLU).Encode()))
	}
	resp.Write(w)
}

type categoryChart struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Total  int      `json:"total"`
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	chart := categoryChart{Labels: []string{}, Values: []int{}, Total: s.table.Len()}
	for _, c := range core.SortedCategoryCounts(s.counts) {
		chart.Labels = append(chart.Labels, c.Category)
		chart.Values = append(chart.Values, c.Count)
	}
	writeJSON(w, http.StatusOK, chart)
}

type topChart struct {
	N      int      `json:"n"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

func (s *Server) handleTopChart(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	n := ParseTopN(r.URL.Query(), s.topN, maxTopN)
	chart := topChart{N: n, Labels: []string{}, Values: []int{}}
	for _, repo := range core.TopByStars(s.table, n) {
		chart.Labels = append(chart.Labels, repo.Name)
		chart.Values = append(chart.Values, repo.Stars)
	}
	writeJSON(w, http.StatusOK, chart)
}

// handleExport streams the filtered view as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if b := RequireMethod(r, http.MethodGet); b != nil {
		b.Write(w)
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	p := ParseFilterParams(q, s.table)
	rows := s.filteredView(p)

	res, err := s.exports.Export(ctx, s.table, rows, services.ExportRequest{
		RequestID:          trace.GetRequestID(ctx),
		Filter:             p,
		IncludeLastUpdated: ParseBoolParam(q, paramLastUpdated, true),
	})
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogError(ctx, "CSV export failed", err, applog.ComponentExport, applog.OpExport,
				applog.NewFields().WithFilter(p.Category, p.MinStars, p.Search))
		InternalServerError("Export failed").Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogExport(ctx, p.Category, p.MinStars, p.Search, res.RowCount)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates and the table are loaded and every
// configured dependency answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckBudget)
	defer cancel()

	ready := true
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		ready = false
	} else {
		checks["templates"] = "ok"
	}

	if s.table == nil {
		checks["table"] = "failed: table not loaded"
		ready = false
	} else {
		checks["table"] = map[string]any{
			"status":    "ok",
			"row_count": s.table.Len(),
			"loaded_at": s.table.LoadedAt().UTC().Format(time.RFC3339),
		}
	}

	for name, p := range s.readyChecks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = fmt.Sprintf("failed: %v", err)
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	checks["cache"] = map[string]any{"entries": s.views.Size()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	exports, publishFailures := s.exports.Stats()
	hits, misses := s.views.Stats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "Total number of completed HTTP requests", "counter", traceMetrics.TotalRequests)
	writeMetric(w, "http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	writeMetric(w, "http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime)
	writeMetric(w, "exports_total", "CSV exports served", "counter", exports)
	writeMetric(w, "export_publish_failures_total", "Export events that could not be published", "counter", publishFailures)
	writeMetric(w, "view_cache_hits_total", "Filtered view cache hits", "counter", hits)
	writeMetric(w, "view_cache_misses_total", "Filtered view cache misses", "counter", misses)
	writeMetric(w, "view_cache_entries", "Filtered views currently cached", "gauge", int64(s.views.Size()))
	writeMetric(w, "rows_loaded", "Rows in the loaded repository table", "gauge", int64(s.table.Len()))
	writeMetric(w, "rate_limit_hits_total", "Requests rejected by the export rate limiter", "counter", limitMetrics.Limited)
	writeMetric(w, "active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", limitMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "Requests flagged by the detector", "counter", securityMetrics.SuspiciousRequests)
	writeMetric(w, "uptime_seconds", "Process uptime in seconds", "gauge", int64(time.Since(s.started).Seconds()))
}

func writeMetric(w io.Writer, name, help, kind string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, kind, name, value)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
