// ABOUTME: HTTP dashboard server for the health log.
// ABOUTME: Wires the gin router, templates, metrics, and change feed around one store.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/harperreed/healthlog/internal/events"
	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultPingInterval keeps websocket connections alive through proxies.
const DefaultPingInterval = 25 * time.Second

const shutdownTimeout = 5 * time.Second

// Server serves the dashboard for a single injected store.
type Server struct {
	repo         storage.Repository
	hub          *events.Hub
	logger       *zap.Logger
	metrics      *Metrics
	tmpl         *template.Template
	engine       *gin.Engine
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics collector. Defaults to a fresh registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithPingInterval overrides the websocket keepalive interval.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) { s.pingInterval = d }
}

// New creates a dashboard server. The caller owns repo and hub.
func New(repo storage.Repository, hub *events.Hub, opts ...Option) (*Server, error) {
	s := &Server{
		repo:         repo,
		hub:          hub,
		logger:       zap.NewNop(),
		pingInterval: DefaultPingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"sleep": storage.FormatSleep,
		"date":  models.FormatDate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.tmpl = tmpl

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), gin.Recovery())
	r.SetHTMLTemplate(s.tmpl)

	r.GET("/", s.handleIndex)
	r.POST("/records", s.handleUpsertForm)
	r.POST("/records/delete", s.handleDeleteForm)
	r.GET("/export.csv", s.handleExportCSV)

	api := r.Group("/api")
	{
		api.GET("/records", s.handleListRecords)
		api.POST("/records", s.handleUpsertJSON)
		api.DELETE("/records/:date", s.handleDeleteJSON)
		api.GET("/summary", s.handleSummary)
	}

	r.GET("/ws", s.handleWS)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return r
}

// Handler returns the HTTP handler for the dashboard.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("dashboard listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// publish notifies subscribers that the store changed.
func (s *Server) publish(e events.Event) {
	n := s.hub.Publish(e)
	s.logger.Debug("change published", zap.String("kind", string(e.Kind)), zap.String("date", e.Date), zap.Int("subscribers", n))
}
