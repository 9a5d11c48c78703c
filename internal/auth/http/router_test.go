package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"chatwire/internal/auth/service"
	"chatwire/internal/common/clock"
	"chatwire/internal/common/constants"
	commonhttp "chatwire/internal/common/http"
	"chatwire/internal/common/logger"
	userdomain "chatwire/internal/user/domain"
	userrepo "chatwire/internal/user/repository"
)

const testJWTSecret = "test-secret-key-with-enough-bytes-00"

type stubUserRepo struct {
	users map[string]userdomain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]userdomain.User)}
}

func (s *stubUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if _, exists := s.users[user.Username]; exists {
		return userrepo.ErrUsernameAlreadyExists
	}
	s.users[user.Username] = user
	return nil
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	user, ok := s.users[username]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (s *stubUserRepo) FindAllExcept(ctx context.Context, id userdomain.ID) ([]userdomain.Public, error) {
	var out []userdomain.Public
	for _, user := range s.users {
		if user.ID != id {
			out = append(out, user.Public())
		}
	}
	return out, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash string, password string) error {
	if hash != "hash:"+password {
		return userrepo.ErrUserNotFound
	}
	return nil
}

type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() (string, error) {
	g.n++
	return "user-" + strconv.Itoa(g.n), nil
}

func newTestHandler(t *testing.T) (http.Handler, *stubUserRepo) {
	t.Helper()

	repo := newStubUserRepo()
	tokens := service.NewTokenIssuer(testJWTSecret, constants.SessionTTL, clock.NewRealClock())
	svc := service.NewAuthService(repo, plainHasher{}, &seqIDGenerator{}, tokens, logger.NewDiscard())

	limiter := commonhttp.NewRateLimiter(100, 100)
	handler := NewHandler(svc, constants.SessionTTL, time.Second, testJWTSecret, limiter, logger.NewDiscard())
	return handler, repo
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSignup_Success(t *testing.T) {
	handler, repo := newTestHandler(t)

	rec := postJSON(handler, "/api/auth/signup", `{"name":"Alice Smith","username":"alice","password":"secret123"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "User created successfully" {
		t.Errorf("unexpected message: %q", msg)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}
	if !cookie.HttpOnly || cookie.Path != "/" || cookie.Value == "" {
		t.Errorf("unexpected cookie attributes: %+v", cookie)
	}

	if _, ok := repo.users["alice"]; !ok {
		t.Error("expected the user to be stored")
	}
}

func TestSignup_ShortPassword(t *testing.T) {
	handler, repo := newTestHandler(t)

	rec := postJSON(handler, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"12345"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "Password must be at least 6 characters" {
		t.Errorf("unexpected message: %q", msg)
	}
	if sessionCookie(rec) != nil {
		t.Error("expected no session cookie on rejection")
	}
	if len(repo.users) != 0 {
		t.Error("expected no user stored after rejection")
	}
}

func TestSignup_MissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(handler, "/api/auth/signup", `{"username":"alice","password":"secret123"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "All fields are required" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	handler, _ := newTestHandler(t)

	first := postJSON(handler, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"secret123"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first signup, got %d", first.Code)
	}

	second := postJSON(handler, "/api/auth/signup", `{"name":"Other Alice","username":"alice","password":"secret456"}`)
	if second.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate username, got %d: %s", second.Code, second.Body.String())
	}
}

func TestLogin_SuccessAndInvalidCredentials(t *testing.T) {
	handler, _ := newTestHandler(t)

	postJSON(handler, "/api/auth/signup", `{"name":"Alice","username":"alice","password":"secret123"}`)

	rec := postJSON(handler, "/api/auth/login", `{"username":"Alice","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(rec) == nil {
		t.Error("expected a session cookie on login")
	}

	rec = postJSON(handler, "/api/auth/login", `{"username":"alice","password":"wrongpass"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Invalid credentials" {
		t.Errorf("unexpected message: %q", msg)
	}

	rec = postJSON(handler, "/api/auth/login", `{"username":"ghost","password":"secret123"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Logout successful" {
		t.Errorf("unexpected message: %q", msg)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected a clearing cookie")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("expected an expired empty cookie, got %+v", cookie)
	}
}

func TestCheck_RequiresAndReturnsSession(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a cookie, got %d", rec.Code)
	}

	signup := postJSON(handler, "/api/auth/signup", `{"name":"Alice Smith","username":"alice","password":"secret123"}`)
	cookie := sessionCookie(signup)
	if cookie == nil {
		t.Fatal("expected a session cookie from signup")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid cookie, got %d: %s", rec.Code, rec.Body.String())
	}

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.Username != "alice" || user.Name != "Alice Smith" {
		t.Errorf("unexpected user: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("expected no password material in the response")
	}
}
