package http

import (
	"context"
	"net/http"
	"strconv"

	"chatwire/internal/common/constants"
	commonerrors "chatwire/internal/common/errors"
	"chatwire/internal/common/httpmetrics"
	"chatwire/internal/common/logger"
	"chatwire/internal/observability/metrics"
)

// HandleError maps any error to a JSON response. Domain errors carry their
// own status code; everything else is a 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	if err == nil {
		return
	}

	ctx := r.Context()

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		handleDomainError(w, r, domainErr, log)
		return
	}

	log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError, log *logger.Logger) {
	ctx := r.Context()
	status := err.HTTPStatus()

	logFields := logger.Fields{
		"error_code": err.Code(),
		"category":   string(err.Category()),
		"status":     status,
		"action":     "domain_error",
	}
	if traceID := traceIDFromContext(ctx); traceID != "" {
		logFields["trace_id"] = traceID
	}

	if log.ShouldLog(logger.DEBUG) {
		log.WithFields(ctx, logFields).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteError(w, status, err.Message())
}

func traceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(constants.TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
