// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mongo provides the managed client behind the "mongo" identity store driver.

Connection is retried a few times at startup so a cold cluster (e.g. Atlas waking up)
does not fail the boot, and every returned client has answered a Ping.
*/
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Opinionated client settings.
const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
	maxPoolSize    = 50
	minPoolSize    = 1
	retryAttempts  = 3
	retryInterval  = 2 * time.Second
)

// ErrFailedToConnect is returned when all connection attempts are exhausted.
var ErrFailedToConnect = errors.New("mongo: failed to connect")

// NewClient connects to mongoURL and returns a verified client.
//
// # Parameters
//   - ctx: Context bounding all connection attempts.
//   - mongoURL: A mongodb:// or mongodb+srv:// URI.
//   - logger: Structured logger for connection events.
func NewClient(ctx context.Context, mongoURL string, logger *slog.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(mongoURL).
		SetConnectTimeout(connectTimeout).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetRetryWrites(true).
		SetRetryReads(true)

	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		client, err := mongo.Connect(clientOptions)
		if err == nil {
			if err = Ping(ctx, client); err == nil {
				logger.Info("mongo_client_connected", slog.Int("attempt", attempt))
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		lastErr = err
		logger.Warn("mongo_connect_retry",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		if attempt == retryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

// Ping verifies that the primary is reachable.
func Ping(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}
	return nil
}
