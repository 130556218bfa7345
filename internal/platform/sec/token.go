// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. The [TokenProcessor] is built once at startup and injected
// into the auth service and HTTP handler; it is safe for concurrent use because
// its secrets and expiry settings never change after construction.
package sec

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/rexauth/internal/platform/constants"
)

// # Configuration

// TokenSpec configures one signed token kind.
type TokenSpec struct {
	// Secret is the HMAC key used to sign and verify the token.
	Secret string
	// Exp is the lifetime of the token, in seconds.
	Exp int64
}

// RefreshTokenSpec extends [TokenSpec] with cookie transport settings.
type RefreshTokenSpec struct {
	TokenSpec
	// CookieName is the name of the cookie carrying the refresh token.
	CookieName string
	// Route is the cookie Path attribute.
	Route string
	// Secure marks the cookie as HTTPS-only.
	Secure bool
}

// TokenConfig is the construction-time configuration of a [TokenProcessor].
type TokenConfig struct {
	AccessToken  TokenSpec
	RefreshToken RefreshTokenSpec
}

// # Claims

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.
//
// TokenVersion must equal the identity's stored version for the token to be
// accepted; every successful refresh bumps the stored version.
type RefreshClaims struct {
	UserID       string `json:"id"`
	TokenVersion int64  `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// ErrInvalidClaims is returned when a token verifies but its claims cannot be read.
var ErrInvalidClaims = errors.New("invalid token claims")

// # Processor

// TokenProcessor issues and verifies access/refresh tokens and writes the
// refresh cookie.
type TokenProcessor struct {
	access  TokenSpec
	refresh RefreshTokenSpec
	now     func() time.Time
}

// TokenOption customises a [TokenProcessor].
type TokenOption func(*TokenProcessor)

// WithClock overrides the time source used for expiry. Tests only.
func WithClock(now func() time.Time) TokenOption {
	return func(processor *TokenProcessor) {
		if now != nil {
			processor.now = now
		}
	}
}

// NewTokenProcessor validates the configuration and returns a processor.
//
// Missing secrets or non-positive expiries are rejected here so that signing
// cannot fail later for configuration reasons.
func NewTokenProcessor(cfg TokenConfig, opts ...TokenOption) (*TokenProcessor, error) {
	if strings.TrimSpace(cfg.AccessToken.Secret) == "" {
		return nil, errors.New("sec: access token secret is required")
	}
	if strings.TrimSpace(cfg.RefreshToken.Secret) == "" {
		return nil, errors.New("sec: refresh token secret is required")
	}
	if cfg.AccessToken.Exp <= 0 || cfg.RefreshToken.Exp <= 0 {
		return nil, errors.New("sec: token expiry must be positive")
	}

	if cfg.RefreshToken.CookieName == "" {
		cfg.RefreshToken.CookieName = constants.DefaultRefreshCookieName
	}
	if cfg.RefreshToken.Route == "" {
		cfg.RefreshToken.Route = constants.DefaultRefreshCookieRoute
	}

	processor := &TokenProcessor{
		access:  cfg.AccessToken,
		refresh: cfg.RefreshToken,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(processor)
	}

	return processor, nil
}

// Now returns the processor's current time.
func (processor *TokenProcessor) Now() time.Time {
	return processor.now()
}

// RefreshCookieName returns the configured refresh cookie name.
func (processor *TokenProcessor) RefreshCookieName() string {
	return processor.refresh.CookieName
}

// # Generation

// GenerateAccessToken signs {id, email, exp} with the access secret.
func (processor *TokenProcessor) GenerateAccessToken(userID, email string) (string, error) {
	claims := AccessClaims{
		UserID:           userID,
		Email:            email,
		RegisteredClaims: processor.registered(processor.access.Exp),
	}
	return processor.sign(claims, processor.access.Secret)
}

// GenerateRefreshToken signs {id, tokenVersion, exp} with the refresh secret.
func (processor *TokenProcessor) GenerateRefreshToken(userID string, tokenVersion int64) (string, error) {
	claims := RefreshClaims{
		UserID:           userID,
		TokenVersion:     tokenVersion,
		RegisteredClaims: processor.registered(processor.refresh.Exp),
	}
	return processor.sign(claims, processor.refresh.Secret)
}

func (processor *TokenProcessor) registered(expSeconds int64) jwt.RegisteredClaims {
	currentTime := processor.now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(time.Duration(expSeconds) * time.Second)),
	}
}

func (processor *TokenProcessor) sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// # Cookie Transport

// SendRefreshToken writes the refresh cookie.
//
// An empty token clears the cookie by giving it an expiry in the past.
func (processor *TokenProcessor) SendRefreshToken(writer http.ResponseWriter, token string) {
	expires := time.Unix(0, 0).UTC()
	if token != "" {
		expires = processor.now().Add(time.Duration(processor.refresh.Exp) * time.Second)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     processor.refresh.CookieName,
		Value:    token,
		Path:     processor.refresh.Route,
		Expires:  expires,
		HttpOnly: true,
		Secure:   processor.refresh.Secure,
	})
}

// # Verification

// VerifyAccessToken checks the signature and expiry of an access token.
//
// Errors come straight from the jwt library so callers can match them with
// [IsExpired] and show their message.
func (processor *TokenProcessor) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := processor.parse(tokenString, claims, processor.access.Secret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken checks the signature and expiry of a refresh token.
func (processor *TokenProcessor) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := processor.parse(tokenString, claims, processor.refresh.Secret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (processor *TokenProcessor) parse(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(processor.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidClaims
	}
	return nil
}

// IsExpired reports whether a verification error was caused by an elapsed exp claim.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
