// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rexauth/internal/api"
	"github.com/taibuivan/rexauth/internal/platform/config"
	"github.com/taibuivan/rexauth/internal/platform/sec"
	"github.com/taibuivan/rexauth/internal/users/auth"
)

func newServer(t *testing.T, check func(context.Context) error) http.Handler {
	t.Helper()

	cfg := &config.Config{ServerPort: "0", Environment: "test"}

	tokens, err := sec.NewTokenProcessor(sec.TokenConfig{
		AccessToken:  sec.TokenSpec{Secret: "access", Exp: 900},
		RefreshToken: sec.RefreshTokenSpec{TokenSpec: sec.TokenSpec{Secret: "refresh", Exp: 3600}},
	})
	require.NoError(t, err)

	service, err := auth.NewService(auth.NewMemoryUserRepository(), tokens, sec.NewBcryptHasher(4), auth.ServiceConfig{})
	require.NoError(t, err)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{StoreDriver: "memory", CheckStore: check}, slog.Default())

	server := api.NewServer(cfg, slog.Default(), api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(service),
	})
	return server.Handler()
}

func TestServer_Health(t *testing.T) {
	handler := newServer(t, func(context.Context) error { return nil })

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ready"`)
}

func TestServer_ReadinessDegraded(t *testing.T) {
	handler := newServer(t, func(context.Context) error { return errors.New("connection refused") })

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
}

func TestServer_MountsAuthRoutes(t *testing.T) {
	handler := newServer(t, nil)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"a@b.com","password":"secret1"}`))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"msg":"User created successfully"}`, recorder.Body.String())
}
