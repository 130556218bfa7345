// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/taibuivan/rexauth/internal/platform/redis"
)

func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := redisstore.NewClient(context.Background(), "redis://"+server.Addr(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redisstore.Ping(context.Background(), client))

	server.Close()
	assert.Error(t, redisstore.Ping(context.Background(), client))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := redisstore.NewClient(context.Background(), "not-a-url", slog.Default())
	assert.Error(t, err)
}
