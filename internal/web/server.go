// Package web serves the portfolio page, the upload endpoint and a JSON and
// websocket view of the pipeline state.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"glassngold/internal/config"
	"glassngold/internal/logging"
	"glassngold/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Server is the HTTP surface over one Pipeline.
type Server struct {
	router   chi.Router
	server   *http.Server
	pipeline *pipeline.Pipeline
	cfg      config.ServerConfig
	base     string
	tmpl     *template.Template
	log      *zap.Logger

	closeOnce sync.Once
	done      chan struct{} // closed on Shutdown; ends websocket streams
}

// New builds the router for p.
func New(cfg config.ServerConfig, p *pipeline.Pipeline) (*Server, error) {
	tmpl, err := template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}

	s := &Server{
		pipeline: p,
		cfg:      cfg,
		base:     cfg.NormalizedBasePath(),
		tmpl:     tmpl,
		log:      logging.Get(logging.CategoryHTTP),
		done:     make(chan struct{}),
	}
	s.router = s.buildRouter()
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// BasePath returns the mount prefix, "" for root.
func (s *Server) BasePath() string { return s.base }

func (s *Server) buildRouter() chi.Router {
	app := chi.NewRouter()
	app.Use(middleware.Recoverer)
	app.Use(middleware.RequestID)
	app.Use(middleware.RealIP)
	app.Use(s.loggingMiddleware)
	app.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// The websocket hijacks the connection, so it stays outside the
	// timeout and compression middleware.
	app.Get("/api/portfolio/ws", s.handlePortfolioStream)

	// Uploads carry no deadline of their own; only appraisal.timeout
	// bounds the model call.
	app.Post("/appraise", s.handleAppraise)

	app.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(time.Minute))
		if !s.cfg.DevMode {
			r.Use(middleware.Compress(5))
		}

		r.Get("/", s.handleIndex)
		r.Get("/health", s.handleHealth)
		r.Get("/api/portfolio", s.handlePortfolio)

		assets, _ := fs.Sub(assetFS, "assets")
		r.Handle("/assets/*", http.StripPrefix(s.base+"/assets/", http.FileServer(http.FS(assets))))
	})

	if s.base == "" {
		return app
	}

	root := chi.NewRouter()
	root.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.base+"/", http.StatusFound)
	})
	root.Mount(s.base, app)
	return root
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", zap.String("addr", s.cfg.Addr), zap.String("base", s.base+"/"))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests, ends websocket streams and waits for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	s.closeOnce.Do(func() { close(s.done) })
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
