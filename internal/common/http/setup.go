package http

import (
	"net/http"

	"chatwire/internal/common/constants"
	"chatwire/internal/common/httpmetrics"
	"chatwire/internal/common/logger"
)

// BuildBaseHandler wraps a handler with the standard middleware chain:
// security headers, panic recovery, trace IDs, body limit, request metrics.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(recovery(TraceIDMiddleware(maxRequestSize(metrics.Wrap(handler)))))
}
