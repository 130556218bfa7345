// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts and cross-cutting keys that are shared between
different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: Password policy and bearer scheme.
  - Storage: Table, collection and key prefixes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "rexauth-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds store connection and migration at boot.
	StartupTimeout = 30 * time.Second
)

// # Authentication

const (
	// MinPasswordLength is the shortest plaintext password accepted at registration.
	MinPasswordLength = 6

	// BearerScheme is the Authorization header scheme carrying access tokens.
	BearerScheme = "Bearer"

	// DefaultRefreshCookieName is used when no cookie name is configured.
	DefaultRefreshCookieName = "rex"

	// DefaultRefreshCookieRoute is used when no cookie path is configured.
	DefaultRefreshCookieRoute = "/"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
	FieldApp    = "app"
)

// # Storage Names

const (
	// MongoUserCollection is the identity collection name.
	MongoUserCollection = "users"

	// RedisPrefixUser namespaces identity hashes (rex:user:<id>).
	RedisPrefixUser = "rex:user:"

	// RedisPrefixEmail namespaces the unique email index (rex:email:<email>).
	RedisPrefixEmail = "rex:email:"
)
