// Package server exposes live viewports over HTTP.
//
// Each POST of a chart creates a session holding one viewport. Clients then
// drive it with gesture events, explicit zooms and resizes, and read back
// its state, rendered documents and the domain-change notifications every
// request produced. A websocket per session streams the same exchange.
//
// # Endpoints
//
//	POST   /api/viewports                  chart JSON -> {id, state}
//	GET    /api/viewports/{id}             state
//	GET    /api/viewports/{id}/svg         SVG document
//	GET    /api/viewports/{id}/render/{f}  document in format f
//	POST   /api/viewports/{id}/resize      {width, height}
//	POST   /api/viewports/{id}/domains     {x_domain, y_domain}
//	POST   /api/viewports/{id}/zoom        {axis, domain}
//	POST   /api/viewports/{id}/reset
//	POST   /api/viewports/{id}/events      [event, ...]
//	POST   /api/viewports/{id}/translate   {x, y, kind}
//	DELETE /api/viewports/{id}
//	GET    /api/viewports/{id}/ws          websocket of events and updates
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/panzoom/pkg/observability"
	"github.com/matzehuels/panzoom/pkg/session"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 4 << 20

// Server is the viewport HTTP API.
type Server struct {
	store    session.Store
	logger   *log.Logger
	ttl      time.Duration
	upgrader websocket.Upgrader
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithTTL sets how long idle sessions live.
func WithTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithCheckOrigin sets the websocket origin check. The default accepts
// same-host origins only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// New returns a server storing sessions in store.
func New(store session.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		store:  store,
		logger: logger,
		ttl:    session.DefaultTTL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route("/api/viewports", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleSVG)
			r.Get("/render/{format}", s.handleRender)
			r.Post("/resize", s.handleResize)
			r.Post("/domains", s.handleDomains)
			r.Post("/zoom", s.handleZoom)
			r.Post("/reset", s.handleReset)
			r.Post("/events", s.handleEvents)
			r.Post("/translate", s.handleTranslate)
			r.Get("/ws", s.handleWS)
		})
	})
	return r
}

// instrument reports every request to the HTTP hooks and the logger.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		ctx := r.Context()
		start := time.Now()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(ctx))
	})
}
