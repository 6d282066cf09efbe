// Package server is the admin HTTP surface of the listener: health, metrics,
// the option catalog, an on-demand decode endpoint and listener stats.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/danmuck/dhcpopt/internal/auth"
	"github.com/danmuck/dhcpopt/internal/observability"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

// Stats counts datagrams seen by the listener.
type Stats struct {
	Frames    atomic.Uint64
	Truncated atomic.Uint64
	Invalid   atomic.Uint64
	Errors    atomic.Uint64
	last      atomic.Int64
}

// Observe folds one processed datagram into the counters.
func (s *Stats) Observe(res pipeline.Result) {
	s.Frames.Add(1)
	switch {
	case res.Err != nil:
		s.Errors.Add(1)
	case res.Truncated():
		s.Truncated.Add(1)
	case res.Validation != nil:
		s.Invalid.Add(1)
	}
	s.last.Store(time.Now().UnixNano())
}

func (s *Stats) LastSeen() time.Time {
	ns := s.last.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

type Server struct {
	Addr     string
	Appeared time.Time
	Stats    *Stats
	// Decode is applied to POST /decode bodies when the request does not
	// override it.
	Decode pipeline.Options
	// Auth guards POST /decode when set.
	Auth auth.Validator

	router *gin.Engine
}

func New(addr string, corsOrigins []string, decode pipeline.Options) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Addr:     addr,
		Appeared: time.Now(),
		Stats:    &Stats{},
		Decode:   decode,
		router:   r,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve runs the HTTP server on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("server.Serve listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server.Serve stopped")
	return nil
}

// ListenAndServe binds s.Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
