package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	commonhttp "chatwire/internal/common/http"
	"chatwire/internal/common/jwtverify"
	"chatwire/internal/common/logger"
	"chatwire/internal/message/domain"
	"chatwire/internal/message/service"
	userdomain "chatwire/internal/user/domain"
)

type sendRequest struct {
	Text string `json:"text"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	messages *service.MessageService
	log      *logger.Logger
}

func NewHandler(
	messages *service.MessageService,
	jwtSecret string,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{messages: messages, log: log}

	requireAuth := jwtverify.Middleware(jwtSecret, log)
	withTimeout := commonhttp.WithTimeout(requestTimeout)

	mux := http.NewServeMux()
	mux.Handle("/api/message/users", requireAuth(commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.sidebarUsers))))
	mux.Handle("/api/message/", requireAuth(withTimeout(h.handleConversationRoutes)))
	return mux
}

func (h *Handler) handleConversationRoutes(w http.ResponseWriter, r *http.Request) {
	otherID := strings.TrimPrefix(r.URL.Path, "/api/message/")
	if otherID == "" || strings.Contains(otherID, "/") {
		commonhttp.WriteError(w, http.StatusBadRequest, "userId is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.conversation(w, r, otherID)
	case http.MethodPost:
		h.send(w, r, otherID)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) sidebarUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
		return
	}

	users, err := h.messages.SidebarUsers(r.Context(), claims.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, lo.Map(users, func(u userdomain.Public, _ int) userResponse {
		return userResponse{
			ID:        string(u.ID),
			Username:  u.Username,
			Name:      u.Name,
			CreatedAt: u.CreatedAt,
		}
	}))
}

func (h *Handler) conversation(w http.ResponseWriter, r *http.Request, otherID string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
		return
	}

	msgs, err := h.messages.Conversation(r.Context(), claims.UserID, otherID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if msgs == nil {
		msgs = []domain.Message{}
	}
	commonhttp.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, receiverID string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
		return
	}

	var req sendRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	msg, err := h.messages.Send(r.Context(), claims.UserID, receiverID, req.Text)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, msg)
}
