package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"chatwire/internal/common/constants"
	commonerrors "chatwire/internal/common/errors"
)

type Config struct {
	HTTPPort    string
	DatabaseURL string
	JWTSecret   string
	SessionTTL  time.Duration

	RequestTimeout time.Duration

	WebSocketWriteWait   time.Duration
	WebSocketPongWait    time.Duration
	WebSocketPingPeriod  time.Duration
	WebSocketMaxMsgSize  int64
	WebSocketSendBufSize int

	Workers                 int
	WorkerRestartBackoff    time.Duration
	WorkerRestartBackoffMax time.Duration
	WorkerMaxRestarts       int
	WorkerRestartWindow     time.Duration
}

func Load() (Config, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return Config{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:    getEnv("PORT", constants.DefaultHTTPPort),
		DatabaseURL: databaseURL,
		JWTSecret:   jwtSecret,
		SessionTTL:  getDurationEnv("SESSION_TTL", constants.SessionTTL),

		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),

		WebSocketWriteWait:   getDurationEnv("WS_WRITE_WAIT", constants.DefaultWebSocketWriteWait),
		WebSocketPongWait:    getDurationEnv("WS_PONG_WAIT", constants.DefaultWebSocketPongWait),
		WebSocketPingPeriod:  getDurationEnv("WS_PING_PERIOD", constants.DefaultWebSocketPingPeriod),
		WebSocketMaxMsgSize:  getInt64Env("WS_MAX_MSG_SIZE", constants.DefaultWebSocketMaxMsgSize),
		WebSocketSendBufSize: getIntEnv("WS_SEND_BUF_SIZE", constants.DefaultWebSocketSendBufSize),

		Workers:                 getIntEnv("CHATWIRE_WORKERS", runtime.NumCPU()),
		WorkerRestartBackoff:    getDurationEnv("WORKER_RESTART_BACKOFF", constants.DefaultWorkerRestartBackoff),
		WorkerRestartBackoffMax: getDurationEnv("WORKER_RESTART_BACKOFF_MAX", constants.DefaultWorkerRestartBackoffMax),
		WorkerMaxRestarts:       getIntEnv("WORKER_MAX_RESTARTS", constants.DefaultWorkerMaxRestarts),
		WorkerRestartWindow:     getDurationEnv("WORKER_RESTART_WINDOW", constants.DefaultWorkerRestartWindow),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64Env(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
