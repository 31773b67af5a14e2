// Package auth issues and checks session tokens, hashes passwords and runs
// the optional GitHub sign-in flow.
//
// SESSION MODEL:
// A successful login yields a signed JWT stored in an HttpOnly "token"
// cookie. The token carries two identifiers:
//
//	sub: the internal user ID
//	jti: a fresh session ID (xid) minted per login
//
// The session ID is what the chat assistant keys its conversation history
// on, so two browsers logged into the same account keep separate chats.
// Nothing about the session is stored server-side except that history.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "fittrack"

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. Tokens live for ttl.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of issued tokens; used for cookie MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Identity is what a valid token proves about the caller.
type Identity struct {
	UserID    string
	SessionID string
}

type claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for userID with a new session ID.
func (s *TokenService) Issue(userID string) (string, Identity, error) {
	return s.issue(userID, s.ttl)
}

// IssueWithDuration is Issue with a custom lifetime. Used in tests to mint
// already-expired tokens.
func (s *TokenService) IssueWithDuration(userID string, d time.Duration) (string, Identity, error) {
	return s.issue(userID, d)
}

func (s *TokenService) issue(userID string, d time.Duration) (string, Identity, error) {
	if userID == "" {
		return "", Identity{}, errors.New("auth: cannot issue token without user ID")
	}
	now := time.Now()
	id := Identity{UserID: userID, SessionID: xid.New().String()}

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        id.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, id, nil
}

// Validate parses and verifies a JWT string.
//
// The jwt library checks the signature, expiry and issuer. WithValidMethods
// pins HS256 so a token claiming "alg: none" is rejected.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}
	if c.ID == "" {
		return Identity{}, fmt.Errorf("auth: token has no session ID")
	}

	return Identity{UserID: c.Subject, SessionID: c.ID}, nil
}
