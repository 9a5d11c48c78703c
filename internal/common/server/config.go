package server

import (
	"net/http"
	"time"

	"chatwire/internal/common/constants"
)

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

func DefaultConfig(port string) Config {
	return Config{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
	}
}

// New builds the worker HTTP server. Read/write timeouts are deliberately
// unset: the same server carries long-lived WebSocket connections.
func New(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
