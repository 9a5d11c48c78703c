package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "chatwire/internal/auth/http"
	authservice "chatwire/internal/auth/service"
	"chatwire/internal/common/clock"
	"chatwire/internal/common/config"
	"chatwire/internal/common/constants"
	commoncrypto "chatwire/internal/common/crypto"
	"chatwire/internal/common/db"
	commonhttp "chatwire/internal/common/http"
	"chatwire/internal/common/logger"
	srv "chatwire/internal/common/server"
	msghttp "chatwire/internal/message/http"
	msgrepo "chatwire/internal/message/repository"
	msgservice "chatwire/internal/message/service"
	"chatwire/internal/realtime"
	userrepo "chatwire/internal/user/repository"
)

// Run assembles and serves one worker process: repositories over the shared
// pool, the websocket hub, the REST surface, and the reuse-port listener
// that lets sibling workers share the port.
func Run(cfg config.Config, log *logger.Logger) error {
	startedAt := time.Now()

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()
	hasher := commoncrypto.NewBcryptHasher()
	idGen := commoncrypto.NewUUIDGenerator()

	userRepo := userrepo.NewPgRepository(pool)
	messageRepo := msgrepo.NewPgRepository(pool, log)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(log, registry, realtime.Config{
		WriteWait:   cfg.WebSocketWriteWait,
		PongWait:    cfg.WebSocketPongWait,
		PingPeriod:  cfg.WebSocketPingPeriod,
		MaxMsgSize:  cfg.WebSocketMaxMsgSize,
		SendBufSize: cfg.WebSocketSendBufSize,
	})

	hubCtx, hubCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(hubCtx)
	}()

	tokens := authservice.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL, clk)
	authSvc := authservice.NewAuthService(userRepo, hasher, idGen, tokens, log)
	messageSvc := msgservice.NewMessageService(messageRepo, userRepo, hub, idGen, clk, log)

	authLimiter := commonhttp.NewRateLimiter(constants.AuthRateLimitPerSecond, constants.AuthRateLimitBurst)

	restMux := http.NewServeMux()
	restMux.HandleFunc("/health", commonhttp.HealthHandler(startedAt))
	restMux.Handle("/metrics", promhttp.Handler())
	restMux.Handle("/api/auth/", authhttp.NewHandler(authSvc, cfg.SessionTTL, cfg.RequestTimeout, cfg.JWTSecret, authLimiter, log))
	restMux.Handle("/api/message/", msghttp.NewHandler(messageSvc, cfg.JWTSecret, cfg.RequestTimeout, log))

	// The websocket route bypasses the base middleware chain: the metrics
	// wrapper's response recorder does not implement http.Hijacker.
	mainMux := http.NewServeMux()
	mainMux.Handle("/ws", realtime.NewHandler(hub, log))
	mainMux.Handle("/", commonhttp.BuildBaseHandler(log, restMux))

	server := srv.New(srv.DefaultConfig(cfg.HTTPPort), mainMux)

	ln, err := srv.NewReusePortListener(context.Background(), server.Addr)
	if err != nil {
		hubCancel()
		return err
	}

	srv.Serve(server, ln, log, []srv.ShutdownHook{
		func(ctx context.Context) error {
			hubCancel()
			wg.Wait()
			return nil
		},
	})

	return nil
}
