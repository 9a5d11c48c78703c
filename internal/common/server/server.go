package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chatwire/internal/common/constants"
	"chatwire/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// Serve runs the server on ln until SIGINT/SIGTERM, then drains: stop
// accepting, run hooks, shut down with a deadline.
func Serve(server *http.Server, ln net.Listener, log *logger.Logger, hooks []ShutdownHook) {
	go func() {
		log.Infof("worker %d listening on %s", os.Getpid(), server.Addr)
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("worker %d shutting down", os.Getpid())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	drainCtx, drainCancel := context.WithTimeout(shutdownCtx, constants.DrainTimeout)
	defer drainCancel()

	server.SetKeepAlivesEnabled(false)

	for i, hook := range hooks {
		if err := hook(drainCtx); err != nil {
			log.Errorf("shutdown hook %d failed: %v", i, err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	} else {
		log.Infof("worker %d stopped gracefully", os.Getpid())
	}
}
