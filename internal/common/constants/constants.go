package constants

import "time"

const (
	MaxMessageLength = 4000

	JWTSecretMinLength = 32
	SessionCookieName  = "jwt"
	SessionTTL         = 7 * 24 * time.Hour

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 5 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ShutdownTimeout         = 30 * time.Second
	DrainTimeout            = 10 * time.Second

	DefaultHTTPPort       = "8000"
	DefaultRequestTimeout = 5 * time.Second

	DefaultWebSocketWriteWait   = 10 * time.Second
	DefaultWebSocketPongWait    = 60 * time.Second
	DefaultWebSocketPingPeriod  = 54 * time.Second
	DefaultWebSocketMaxMsgSize  = 4096
	DefaultWebSocketSendBufSize = 256

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	DefaultWorkerRestartBackoff    = 200 * time.Millisecond
	DefaultWorkerRestartBackoffMax = 10 * time.Second
	DefaultWorkerMaxRestarts       = 5
	DefaultWorkerRestartWindow     = time.Minute

	AuthRateLimitPerSecond   = 5
	AuthRateLimitBurst       = 10
	RateLimitCleanupInterval = 5 * time.Minute

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
