package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"reposcan/internal/cache"
	"reposcan/internal/content"
	"reposcan/internal/core"
	applog "reposcan/internal/log"
	"reposcan/internal/middleware/ratelimit"
	"reposcan/internal/middleware/security"
	"reposcan/internal/middleware/trace"
	"reposcan/internal/services"
	appweb "reposcan/web"
)

// ExportFilename is the attachment name of every CSV download.
const ExportFilename = "filtered_repos.csv"

const (
	defaultTopN      = 10
	maxTopN          = 100
	cacheCleanup     = 5 * time.Minute
	staticMaxAge     = 3600
	readyCheckBudget = 5 * time.Second
)

// Pinger is a dependency probed by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr                string
	Logger              *applog.Logger
	Exports             *services.ExportService
	TopN                int
	ExportRatePerMinute int
	CacheSize           int
	CacheTTL            time.Duration
	ReadyChecks         map[string]Pinger

	// Templates overrides the embedded templates; it must hold templates/*.html.
	Templates fs.FS
}

// Server serves the dashboard over one immutable table. Everything derived
// from the full table is computed once in NewServer.
type Server struct {
	http.Server
	logger    *applog.Logger
	templates *template.Template

	table      *core.Table
	page       content.Page
	counts     map[string]int
	categories []string
	maxStars   int
	topN       int

	exports     *services.ExportService
	views       *cache.LRUCache[[]core.Repository]
	cacheMgr    *cache.Manager
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	readyChecks map[string]Pinger

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(table *core.Table, page content.Page, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	if opts.Exports == nil {
		opts.Exports = services.NewExportService(nil)
	}
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.Templates == nil {
		opts.Templates = appweb.TemplatesFS
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:      logger,
		table:       table,
		page:        page,
		counts:      core.CategoryCounts(table),
		categories:  core.Categories(table),
		maxStars:    core.MaxStars(table),
		topN:        min(opts.TopN, maxTopN),
		exports:     opts.Exports,
		views:       cache.NewLRUCache[[]core.Repository](opts.CacheSize, opts.CacheTTL),
		cacheMgr:    cache.NewManager(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ExportRatePerMinute}),
		detector:    security.NewDetector(),
		readyChecks: opts.ReadyChecks,
		started:     time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.cacheMgr.Register(s.views)
	s.cacheMgr.StartCleanup(cacheCleanup)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(opts.Templates, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err, applog.FieldComponent, applog.ComponentTemplate)
		t = nil
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/repositories", s.handleRepositories)
	mux.HandleFunc("/api/charts/categories", s.handleCategoryChart)
	mux.HandleFunc("/api/charts/top", s.handleTopChart)
	mux.Handle("/export.csv", s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(http.HandlerFunc(s.handleExport)))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)
	s.Handler = handler

	return s
}

var templateFuncs = template.FuncMap{
	"stars": formatStars,
}

// filteredView returns the cached view for p, computing it on a miss. The
// returned slice is shared and must not be modified.
func (s *Server) filteredView(p core.FilterParams) []core.Repository {
	return s.views.GetOrCompute(p.Key(), func() []core.Repository {
		return core.Filter(s.table, p)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many downloads. Please try again shortly.").Write(w)
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		if err := s.Server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("http shutdown: %w", err)
		}
	})
	return shutdownErr
}
