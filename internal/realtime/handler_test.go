package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatwire/internal/common/logger"
)

func TestHandler_RejectsMissingUserID(t *testing.T) {
	handler := NewHandler(newTestHub(), logger.NewDiscard())

	for _, target := range []string{"/ws", "/ws?userId=", "/ws?userId=undefined"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "message") {
			t.Errorf("expected a json error body for %s, got %q", target, rec.Body.String())
		}
	}
}
