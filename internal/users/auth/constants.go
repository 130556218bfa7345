// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Client Messages

// Messages returned to clients. Tests and clients match on these strings, so they
// are stable.
const (
	MsgInsufficientInput  = "Email and password are required"
	MsgWeakPassword       = "Password must be at least 6 characters long"
	MsgUserNotFound       = "User doesn't exist"
	MsgInvalidCredentials = "Invalid credentials"
	MsgEmailTaken         = "Email already taken"
	MsgUserCreated        = "User created successfully"

	MsgNoToken        = "No token"
	MsgMalformedToken = "Malformed token"
	MsgInvalidToken   = "Invalid token"
	MsgTokenExpired   = "Token expired"

	MsgNoCookie       = "no cookie"
	MsgNoUser         = "no user"
	MsgExpiredVersion = "expired version"
)
