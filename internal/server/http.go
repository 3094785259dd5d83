// Package server runs the long-lived serve mode: the HTTP API plus the
// background collection triggers.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nbrsnap/internal/config"
	"nbrsnap/internal/job"
	"nbrsnap/internal/service"
	"nbrsnap/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer holds everything serve mode runs
type HTTPServer struct {
	Engine    *gin.Engine
	Logger    *zap.Logger
	Config    *config.Config
	Service   *service.SnapshotService
	Scheduler *job.Scheduler
	Watcher   *watcher.Watcher
}

// NewHTTPServer builds an HTTPServer. Scheduler and Watcher may be nil.
func NewHTTPServer(engine *gin.Engine, logger *zap.Logger, cfg *config.Config, svc *service.SnapshotService, scheduler *job.Scheduler, w *watcher.Watcher) *HTTPServer {
	return &HTTPServer{
		Engine:    engine,
		Logger:    logger,
		Config:    cfg,
		Service:   svc,
		Scheduler: scheduler,
		Watcher:   w,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *HTTPServer) Run(ctx context.Context) error {
	if s.Scheduler != nil {
		stop, err := s.Scheduler.Start(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	if s.Watcher != nil {
		go func() {
			if err := s.Watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.Logger.Error("inventory watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              s.Config.HTTP.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		// Streaming requests end with the server context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("http server starting", zap.String("listen", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
