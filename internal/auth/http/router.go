package http

import (
	"context"
	"net/http"
	"time"

	"chatwire/internal/auth/service"
	"chatwire/internal/common/constants"
	commonhttp "chatwire/internal/common/http"
	"chatwire/internal/common/jwtverify"
	"chatwire/internal/common/logger"
)

type signupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	auth           *service.AuthService
	sessionTTL     time.Duration
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(
	auth *service.AuthService,
	sessionTTL time.Duration,
	requestTimeout time.Duration,
	jwtSecret string,
	limiter *commonhttp.RateLimiter,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		auth:           auth,
		sessionTTL:     sessionTTL,
		requestTimeout: requestTimeout,
		log:            log,
	}

	requireAuth := jwtverify.Middleware(jwtSecret, log)
	limit := limiter.Middleware()

	mux := http.NewServeMux()
	mux.Handle("/api/auth/signup", limit(commonhttp.RequireMethod(http.MethodPost)(h.signup)))
	mux.Handle("/api/auth/login", limit(commonhttp.RequireMethod(http.MethodPost)(h.login)))
	mux.Handle("/api/auth/logout", commonhttp.RequireMethod(http.MethodGet)(h.logout))
	mux.Handle("/api/auth/check", requireAuth(commonhttp.RequireMethod(http.MethodGet)(h.check)))
	return mux
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.auth.Signup(ctx, service.SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.setSessionCookie(w, r, result.Token)
	commonhttp.WriteJSON(w, http.StatusCreated, commonhttp.MessageResponse{
		Message: "User created successfully",
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.auth.Login(ctx, service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.setSessionCookie(w, r, result.Token)
	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.MessageResponse{
		Message: "Logged in successfully",
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.MessageResponse{
		Message: "Logout successful",
	})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	user, err := h.auth.CheckAuth(ctx, claims.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, userResponse{
		ID:        string(user.ID),
		Username:  user.Username,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
}
