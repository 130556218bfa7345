// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity and token lifecycle layer.

It defines the identity record persisted by every store driver, the authentication
flows (register, login, protect, refresh, logout) and their HTTP delivery.

# Architecture

The flows depend only on the [UserRepository] contract and a [TokenProcessor]. Store
drivers (Postgres, MongoDB, Redis, memory) live beside the flows and are selected at
startup.
*/
package auth

import (
	"time"

	"github.com/taibuivan/rexauth/internal/users/schema"
)

// # Domain Entities

// User is a stored identity record.
//
// Email and PasswordHash are fixed columns in every driver. Fields declared by the
// identity schema beyond email/password live in Extra.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // Explicitly omitted from JSON for security.
	TokenVersion int64          `json:"tokenVersion"`
	Extra        map[string]any `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Field returns the value of a named record field.
func (user *User) Field(name string) (any, bool) {
	switch name {
	case schema.FieldEmail:
		return user.Email, true
	case schema.FieldPassword:
		return user.PasswordHash, true
	}
	value, ok := user.Extra[name]
	return value, ok
}

// Project returns the subset of the record named by fields. Absent fields are
// skipped and the password hash is never included.
func (user *User) Project(fields []string) map[string]any {
	projection := make(map[string]any, len(fields))
	for _, name := range fields {
		if name == schema.FieldPassword {
			continue
		}
		if value, ok := user.Field(name); ok {
			projection[name] = value
		}
	}
	return projection
}

// clone returns a copy that shares no maps with user.
func (user *User) clone() *User {
	copied := *user
	if user.Extra != nil {
		copied.Extra = make(map[string]any, len(user.Extra))
		for key, value := range user.Extra {
			copied.Extra[key] = value
		}
	}
	return &copied
}

// # Field Identifiers

// Wire field names used by the delivery layer.
const (
	FieldAccessToken = "accessToken"
	FieldUserInfo    = "userInfo"
	FieldMessage     = "msg"
	FieldOK          = "ok"
)
