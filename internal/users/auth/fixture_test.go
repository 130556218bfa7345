// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rexauth/internal/platform/sec"
	"github.com/taibuivan/rexauth/internal/users/auth"
	"github.com/taibuivan/rexauth/internal/users/schema"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret1"
	accessExp    = 900
	refreshExp   = 3600
)

// fixture wires a service over the memory store with a controllable clock.
type fixture struct {
	now        time.Time
	repository *auth.MemoryUserRepository
	tokens     *sec.TokenProcessor
	service    *auth.Service
	handler    *auth.Handler
}

func newFixture(t *testing.T, identitySchema schema.Schema, publicFields ...string) *fixture {
	t.Helper()

	f := &fixture{
		now:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		repository: auth.NewMemoryUserRepository(),
	}

	tokens, err := sec.NewTokenProcessor(sec.TokenConfig{
		AccessToken: sec.TokenSpec{Secret: "access-secret", Exp: accessExp},
		RefreshToken: sec.RefreshTokenSpec{
			TokenSpec:  sec.TokenSpec{Secret: "refresh-secret", Exp: refreshExp},
			CookieName: "rex",
			Route:      "/api/v1/auth/refresh",
		},
	}, sec.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.tokens = tokens

	service, err := auth.NewService(f.repository, tokens, sec.NewBcryptHasher(4), auth.ServiceConfig{
		Schema:       identitySchema,
		PublicFields: publicFields,
	})
	require.NoError(t, err)
	f.service = service
	f.handler = auth.NewHandler(service)

	return f
}

// advance moves the token clock forward.
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// registerDefault stores the canonical test identity.
func (f *fixture) registerDefault(t *testing.T) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), map[string]any{
		"email":    testEmail,
		"password": testPassword,
	})
	require.NoError(t, err)
	return user
}

func intPtr(v int) *int { return &v }

// profileSchema declares a few extra fields on top of the base schema.
func profileSchema() schema.Schema {
	return schema.Base().Merge(schema.Schema{
		"name":  {Kind: schema.KindString, MinLength: intPtr(2), MaxLength: intPtr(20)},
		"admin": {Kind: schema.KindBoolean, Required: true, Default: false},
	})
}
