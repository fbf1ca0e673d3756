package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"formzen/internal/domain"
	"formzen/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionIssuer is the iss claim of anonymous session tokens
	SessionIssuer = "formzen"

	// SessionCookieName carries the anonymous session token
	SessionCookieName = "formzen_session"
)

// AnonymousSigner issues HS256 session tokens for anonymous identities.
type AnonymousSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAnonymousSigner creates a signer. An empty secret is rejected.
func NewAnonymousSigner(secret []byte, ttl time.Duration) (*AnonymousSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret cannot be empty")
	}
	return &AnonymousSigner{secret: secret, ttl: ttl, now: time.Now}, nil
}

// RandomSecret returns 32 random bytes for development use when no
// SESSION_SECRET is configured. Sessions signed with it end at restart.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}

// TTL is the lifetime of issued tokens
func (s *AnonymousSigner) TTL() time.Duration {
	return s.ttl
}

// IssueAnonymous signs a token whose subject is userID
func (s *AnonymousSigner) IssueAnonymous(userID string) (string, error) {
	now := s.now()
	claims := models.AnonymousClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    SessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		IsAnonymous: true,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// VerifyAnonymous validates a token produced by IssueAnonymous
func (s *AnonymousSigner) VerifyAnonymous(tokenString string) (*models.AnonymousClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AnonymousClaims{},
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(SessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid anonymous session"}
	}

	claims, ok := token.Claims.(*models.AnonymousClaims)
	if !ok || !token.Valid || claims.Subject == "" || !claims.IsAnonymous {
		return nil, &domain.UnauthorizedError{Message: "invalid anonymous session"}
	}

	return claims, nil
}

// SessionCookie builds the cookie that carries an anonymous session token
func SessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie expires the anonymous session cookie
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
