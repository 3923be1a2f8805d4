// Package web serves the browser front end: a page with the two rendered
// views and a JSON API that re-renders them as the input changes.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/unpack/internal/config"
	"github.com/oakwood-commons/unpack/pkg/core"
)

//go:embed assets
var assets embed.FS

// MaxBodyBytes bounds the size of a document posted to the render API.
const MaxBodyBytes = 8 << 20

// Server renders documents over HTTP. Requests share no mutable state.
type Server struct {
	engine *core.Engine
	cfg    config.Config
	log    logr.Logger
	page   *template.Template
	about  template.HTML
	demo   string
}

// New prepares the page template, the about section and the demo payload.
func New(cfg config.Config, engine *core.Engine, lgr logr.Logger) (*Server, error) {
	page, err := template.ParseFS(assets, "assets/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	aboutMD, err := assets.ReadFile("assets/about.md")
	if err != nil {
		return nil, fmt.Errorf("read about section: %w", err)
	}
	demo, err := cfg.DemoPayload()
	if err != nil {
		return nil, err
	}
	return &Server{
		engine: engine,
		cfg:    cfg,
		log:    lgr.WithName("web"),
		page:   page,
		about:  renderMarkdown(aboutMD),
		demo:   string(demo),
	}, nil
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	static, err := fs.Sub(assets, "assets/static")
	if err != nil {
		// the embedded tree is fixed at build time
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.Index)
	r.POST("/api/render", s.Render)
	r.GET("/healthz", s.Health)
	return r
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	s.log.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout().String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
