package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/websocket"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/jobs"
)

// Defaults applied when no option overrides them.
const (
	DefaultMaxUpload  = 20 << 20
	DefaultRateLimit  = 30
	defaultPingPeriod = 30 * time.Second
	defaultFetchWait  = 30 * time.Second
	writeWait         = 10 * time.Second
	filesRoute        = "/files"
)

// Server routes API requests to a job runner.
type Server struct {
	runner       *jobs.Runner
	logger       *slog.Logger
	maxUpload    int64
	rateLimit    int
	filesDir     string
	format       typeset.Format
	font         string
	client       *http.Client
	allowPrivate bool
	upgrader     websocket.Upgrader
	pingPeriod   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUpload bounds the manuscript size in bytes, for uploads and
// fetched sources alike.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithRateLimit sets how many submissions one client IP may make per
// minute. Zero disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		s.rateLimit = perMinute
	}
}

// WithFilesDir serves published artifacts from dir under /files/.
func WithFilesDir(dir string) Option {
	return func(s *Server) {
		s.filesDir = dir
	}
}

// WithDefaults sets the format and font used when a submission names none.
func WithDefaults(format typeset.Format, font string) Option {
	return func(s *Server) {
		s.format = format
		s.font = font
	}
}

// WithPrivateSources lets sourceUrl reach loopback, private and link-local
// addresses. Off by default.
func WithPrivateSources(allow bool) Option {
	return func(s *Server) {
		s.allowPrivate = allow
	}
}

// WithHTTPClient sets the client used to fetch sourceUrl manuscripts. The
// client is used as is; WithPrivateSources does not apply to it.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		if c != nil {
			s.client = c
		}
	}
}

// WithPingPeriod sets the websocket keepalive interval.
// Panics if d <= 0.
func WithPingPeriod(d time.Duration) Option {
	if d <= 0 {
		panic("server: WithPingPeriod duration must be positive")
	}
	return func(s *Server) {
		s.pingPeriod = d
	}
}

// New creates a Server for runner.
func New(runner *jobs.Runner, opts ...Option) *Server {
	s := &Server{
		runner:     runner,
		logger:     slog.New(slog.DiscardHandler),
		maxUpload:  DefaultMaxUpload,
		rateLimit:  DefaultRateLimit,
		format:     typeset.FormatPrint,
		font:       typeset.DefaultFontKey,
		pingPeriod: defaultPingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = newFetchClient(defaultFetchWait, s.allowPrivate)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/fonts", s.handleFonts)

		r.Route("/projects/{projectID}/print-jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.With(s.submitLimiter()...).Post("/", s.handleCreateJob)
		})

		r.Route("/print-jobs/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Delete("/", s.handleDeleteJob)
			r.Get("/events", s.handleEvents)
		})
	})

	if s.filesDir != "" {
		fileServer := http.FileServer(http.Dir(s.filesDir))
		r.Handle(filesRoute+"/*", http.StripPrefix(filesRoute+"/", fileServer))
	}

	return r
}

// submitLimiter returns the per-IP limiter for job submissions, if any.
func (s *Server) submitLimiter() []func(http.Handler) http.Handler {
	if s.rateLimit <= 0 {
		return nil
	}
	return []func(http.Handler) http.Handler{
		httprate.LimitByIP(s.rateLimit, time.Minute),
	}
}

// requestLogger logs one line per request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
