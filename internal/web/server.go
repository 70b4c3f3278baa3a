package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/vbonduro/photoshare/internal/metrics"
	"github.com/vbonduro/photoshare/internal/service"
)

// Options tune the middleware in front of the API.
type Options struct {
	// AuthSecret enables bearer-token checks on /api routes when non-empty.
	AuthSecret []byte
	// CORSOrigins lists allowed browser origins; empty allows none.
	CORSOrigins []string
	// RateLimit is the sustained per-client request rate; zero disables limiting.
	RateLimit float64
	RateBurst int
	// TrustedProxies lists proxy addresses or CIDR ranges whose forwarding
	// headers name the real client. Empty means the connection address is used.
	TrustedProxies []string
}

type Server struct {
	shares  *service.ShareService
	gallery *service.GalleryService
	search  *service.SearchService
	hub     http.Handler
	metrics *metrics.Metrics
	opts    Options
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
}

// NewServer wires the JSON API. hub serves /api/ws and may be nil.
func NewServer(
	shares *service.ShareService,
	gallery *service.GalleryService,
	search *service.SearchService,
	hub http.Handler,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		shares:  shares,
		gallery: gallery,
		search:  search,
		hub:     hub,
		metrics: m,
		opts:    opts,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()

	var h http.Handler = s.mux
	h = cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	}).Handler(h)
	if opts.RateLimit > 0 {
		trusted, err := parseTrustedProxies(opts.TrustedProxies)
		if err != nil {
			logger.Error("ignoring trusted proxies", "error", err)
			trusted = nil
		}
		h = newRateLimiter(opts.RateLimit, opts.RateBurst, trusted).middleware(h)
	}
	s.handler = requestLogger(logger, m, securityHeaders(h))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.api("GET /api/user/profile", s.handleGetProfile)
	s.api("POST /api/user/profile", s.handleSetProfile)

	s.api("GET /api/contacts", s.handleListContacts)
	s.api("POST /api/contacts", s.handleAddContact)
	s.api("DELETE /api/contacts/{id}", s.handleDeleteContact)

	s.api("POST /api/share", s.handleShare)
	s.api("GET /api/shares", s.handleListShares)
	s.api("GET /api/share/history", s.handleShareHistory)
	s.api("GET /api/shares/sent", s.handleSentShares)
	s.api("GET /api/shares/received", s.handleReceivedByMe)
	s.api("GET /api/received-shares", s.handleReceivedShares)
	s.api("GET /api/shares/contact/{name}", s.handleSharedWithContact)
	s.api("POST /api/shares/{id}/read", s.handleMarkRead)

	s.api("GET /api/photos", s.handleListPhotos)
	s.api("POST /api/upload", s.handleUploadPhoto)
	s.api("DELETE /api/photos/{id}", s.handleDeletePhoto)
	s.api("GET /api/photos/{id}/image", s.handleGetPhoto)
	s.api("GET /api/photos/{id}/thumbnail", s.handleGetThumbnail)

	s.api("POST /api/chat", s.handleChat)

	if s.hub != nil {
		s.mux.Handle("GET /api/ws", s.authenticate(s.hub))
	}
}

func (s *Server) api(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.authenticate(h))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
