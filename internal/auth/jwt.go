// Package auth provides JWT issuance/validation, bcrypt password hashing,
// guest credential generation, and the request middleware that enforces the
// session gate.
//
// Tokens come in pairs: a short-lived access token authenticates API calls,
// a longer-lived refresh token is exchanged for new access tokens and is the
// only token that can be revoked (blacklisted by its jti claim on logout).
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	issuer = "habit-tracker"

	// TokenTypeAccess and TokenTypeRefresh distinguish the two halves of a
	// pair; a refresh token is never accepted where an access token is
	// required and vice versa.
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenPair is the access+refresh pair minted at every successful
// registration, login, or guest creation. Pairs are independent: a user may
// hold many valid pairs at once.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// claims is the JWT payload: the registered claims plus a token_type
// discriminator.
type claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// RefreshClaims is what a validated refresh token yields: enough to
// identify the user and to blacklist the token by its jti.
type RefreshClaims struct {
	UserID    string
	TokenID   string // jti claim, the blacklist key
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 JWTs. The clock is injected so
// expiry behavior is testable; production code uses time.Now.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService with the default lifetimes
// (15 minutes access, 7 days refresh).
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	return NewTokenServiceWithClock(secret, time.Now)
}

// NewTokenServiceWithClock creates a TokenService with an explicit clock.
func NewTokenServiceWithClock(secret string, now func() time.Time) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        now,
	}, nil
}

// IssuePair mints a fresh access+refresh pair for the given user.
func (s *TokenService) IssuePair(userID string) (TokenPair, error) {
	access, err := s.sign(userID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a standalone access token; used by the refresh endpoint.
func (s *TokenService) IssueAccess(userID string) (string, error) {
	return s.sign(userID, TokenTypeAccess, s.accessTTL)
}

func (s *TokenService) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateAccess verifies an access token and returns the user ID it
// encodes. Refresh tokens are rejected here.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	c, err := s.parse(tokenStr, TokenTypeAccess)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// ValidateRefresh verifies a refresh token and returns its claims. The
// caller is responsible for checking the jti against the blacklist.
func (s *TokenService) ValidateRefresh(tokenStr string) (*RefreshClaims, error) {
	c, err := s.parse(tokenStr, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &RefreshClaims{
		UserID:    c.Subject,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) parse(tokenStr, wantType string) (*claims, error) {
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
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.TokenType != wantType {
		return nil, fmt.Errorf("auth: token has type %q, want %q", c.TokenType, wantType)
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}
	if c.ID == "" {
		return nil, errors.New("auth: token has no id")
	}
	return c, nil
}
