package jwtverify

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"chatwire/internal/common/constants"
	commonerrors "chatwire/internal/common/errors"
	commonhttp "chatwire/internal/common/http"
	"chatwire/internal/common/logger"
)

type Claims struct {
	UserID   string
	Username string
	Name     string
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

// Middleware authenticates requests by the session cookie. The cookie holds
// an HS256 JWT issued at signup/login.
func Middleware(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				log.Warnf("auth failed path=%s: missing session cookie", r.URL.Path)
				commonhttp.HandleError(w, r, commonerrors.ErrMissingSession, log)
				return
			}

			claims, err := ParseToken(cookie.Value, secretBytes)
			if err != nil {
				log.Warnf("auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.HandleError(w, r, commonerrors.ErrInvalidToken.WithCause(err), log)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	val := ctx.Value(claimsKey)
	claims, ok := val.(Claims)
	return claims, ok
}

func ParseToken(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return Claims{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims type")
	}

	sub, _ := mapClaims["sub"].(string)
	username, _ := mapClaims["usr"].(string)
	if sub == "" || username == "" {
		return Claims{}, errors.New("missing sub or usr claims")
	}

	name, _ := mapClaims["name"].(string)

	return Claims{
		UserID:   sub,
		Username: username,
		Name:     name,
	}, nil
}
