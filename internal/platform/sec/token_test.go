// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rexauth/internal/platform/sec"
)

// fixedClock returns a settable time source for expiry tests.
type fixedClock struct{ current time.Time }

func (c *fixedClock) now() time.Time { return c.current }

func newProcessor(t *testing.T, clock *fixedClock) *sec.TokenProcessor {
	t.Helper()

	processor, err := sec.NewTokenProcessor(sec.TokenConfig{
		AccessToken: sec.TokenSpec{Secret: "access-secret", Exp: 60},
		RefreshToken: sec.RefreshTokenSpec{
			TokenSpec:  sec.TokenSpec{Secret: "refresh-secret", Exp: 3600},
			CookieName: "rex",
			Route:      "/api/v1/auth/refresh",
		},
	}, sec.WithClock(clock.now))
	require.NoError(t, err)

	return processor
}

/*
TestNewTokenProcessor_RejectsBadConfig covers construction-time validation.
*/
func TestNewTokenProcessor_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  sec.TokenConfig
	}{
		{"missing_access_secret", sec.TokenConfig{
			AccessToken:  sec.TokenSpec{Exp: 60},
			RefreshToken: sec.RefreshTokenSpec{TokenSpec: sec.TokenSpec{Secret: "r", Exp: 60}},
		}},
		{"missing_refresh_secret", sec.TokenConfig{
			AccessToken:  sec.TokenSpec{Secret: "a", Exp: 60},
			RefreshToken: sec.RefreshTokenSpec{TokenSpec: sec.TokenSpec{Secret: "  ", Exp: 60}},
		}},
		{"zero_expiry", sec.TokenConfig{
			AccessToken:  sec.TokenSpec{Secret: "a", Exp: 0},
			RefreshToken: sec.RefreshTokenSpec{TokenSpec: sec.TokenSpec{Secret: "r", Exp: 60}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenProcessor(tt.cfg)
			assert.Error(t, err)
		})
	}
}

/*
TestTokenProcessor_AccessRoundTrip verifies that non-timing fields survive signing.
*/
func TestTokenProcessor_AccessRoundTrip(t *testing.T) {
	clock := &fixedClock{current: time.Now()}
	processor := newProcessor(t, clock)

	token, err := processor.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	claims, err := processor.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, clock.current.Add(60*time.Second).Unix(), claims.ExpiresAt.Unix())
}

/*
TestTokenProcessor_RefreshRoundTrip verifies the embedded token version.
*/
func TestTokenProcessor_RefreshRoundTrip(t *testing.T) {
	processor := newProcessor(t, &fixedClock{current: time.Now()})

	token, err := processor.GenerateRefreshToken("user-1", 7)
	require.NoError(t, err)

	claims, err := processor.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, int64(7), claims.TokenVersion)
}

/*
TestTokenProcessor_SecretsAreNotInterchangeable ensures a refresh token cannot
be used as an access token and vice versa.
*/
func TestTokenProcessor_SecretsAreNotInterchangeable(t *testing.T) {
	processor := newProcessor(t, &fixedClock{current: time.Now()})

	refreshToken, err := processor.GenerateRefreshToken("user-1", 0)
	require.NoError(t, err)
	_, err = processor.VerifyAccessToken(refreshToken)
	assert.Error(t, err)

	accessToken, err := processor.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	_, err = processor.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
}

/*
TestTokenProcessor_Expiry checks that a token is rejected once exp is reached.
*/
func TestTokenProcessor_Expiry(t *testing.T) {
	clock := &fixedClock{current: time.Now()}
	processor := newProcessor(t, clock)

	token, err := processor.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	clock.current = clock.current.Add(61 * time.Second)

	_, err = processor.VerifyAccessToken(token)
	require.Error(t, err)
	assert.True(t, sec.IsExpired(err))
}

/*
TestTokenProcessor_TamperedToken checks signature verification.
*/
func TestTokenProcessor_TamperedToken(t *testing.T) {
	processor := newProcessor(t, &fixedClock{current: time.Now()})

	token, err := processor.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = processor.VerifyAccessToken(token + "x")
	require.Error(t, err)
	assert.False(t, sec.IsExpired(err))
}

/*
TestTokenProcessor_SendRefreshToken checks the Set-Cookie attributes.
*/
func TestTokenProcessor_SendRefreshToken(t *testing.T) {
	clock := &fixedClock{current: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	processor := newProcessor(t, clock)

	recorder := httptest.NewRecorder()
	processor.SendRefreshToken(recorder, "abc.def.ghi")

	header := recorder.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "rex=abc.def.ghi"))
	assert.Contains(t, header, "Path=/api/v1/auth/refresh")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Expires=Fri, 02 Jan 2026 04:04:05 GMT")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, clock.current.Add(time.Hour).Unix(), cookies[0].Expires.Unix())
}

/*
TestTokenProcessor_ClearRefreshToken checks that an empty token expires the cookie.
*/
func TestTokenProcessor_ClearRefreshToken(t *testing.T) {
	processor := newProcessor(t, &fixedClock{current: time.Now()})

	recorder := httptest.NewRecorder()
	processor.SendRefreshToken(recorder, "")

	header := recorder.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "rex=;"))
	assert.Contains(t, header, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	assert.Contains(t, header, "HttpOnly")
}

/*
TestBcryptHasher verifies hash and verify agree.
*/
func TestBcryptHasher(t *testing.T) {
	hasher := sec.NewBcryptHasher(4)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, hasher.Verify("secret1", hash))
	assert.False(t, hasher.Verify("secret2", hash))
	assert.False(t, hasher.Verify("secret1", "not-a-hash"))
}
