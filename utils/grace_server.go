package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// Server wraps http.Server to drain in-flight requests on SIGINT/SIGTERM.
type Server struct {
	*http.Server

	logger     *zap.Logger
	signalChan chan os.Signal
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		logger:     logger,
		signalChan: make(chan os.Signal, 1),
	}
}

// Run listens on srv.Addr and blocks until ctx is cancelled, a stop signal
// arrives, or the listener fails.
func (srv *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("net.Listen error: %w", err)
	}
	return srv.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	signal.Notify(srv.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(srv.signalChan)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-srv.signalChan:
		srv.logger.Info("received signal, graceful shutting down HTTP server", zap.String("signal", sig.String()))
	case <-ctx.Done():
		srv.logger.Info("context cancelled, graceful shutting down HTTP server")
	}

	return srv.shutdownHTTPServer()
}

func (srv *Server) shutdownHTTPServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	srv.logger.Info("HTTP server shutdown success")
	return nil
}

// GraceServer starts an HTTP server with graceful shutdown.
func GraceServer(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	return NewServer(addr, handler, logger).Run(ctx)
}
