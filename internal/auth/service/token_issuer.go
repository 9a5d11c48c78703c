package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatwire/internal/common/clock"
	userdomain "chatwire/internal/user/domain"
)

type TokenIssuer struct {
	jwtSecret  []byte
	clock      clock.Clock
	sessionTTL time.Duration
}

func NewTokenIssuer(jwtSecret string, sessionTTL time.Duration, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret:  []byte(jwtSecret),
		clock:      clk,
		sessionTTL: sessionTTL,
	}
}

func (ti *TokenIssuer) IssueSessionToken(user userdomain.User) (string, error) {
	now := ti.clock.Now()
	claims := jwt.MapClaims{
		"sub":  string(user.ID),
		"usr":  user.Username,
		"name": user.Name,
		"exp":  now.Add(ti.sessionTTL).Unix(),
		"iat":  now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(ti.jwtSecret)
}
