// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

// # Store Errors

// Sentinel errors every [UserRepository] driver maps its native failures onto.
var (
	// ErrUserNotFound is returned when no identity matches the lookup key.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrDuplicateEmail is returned by Create when the email is already stored.
	ErrDuplicateEmail = errors.New("auth: email already stored")

	// ErrVersionConflict is returned when the stored token version no longer
	// equals the expected value.
	ErrVersionConflict = errors.New("auth: token version changed")
)

// # User Data Access

// UserRepository defines the data access contract for identity records.
//
// Email uniqueness is enforced by the store itself, so two concurrent registrations
// of the same address cannot both succeed.
type UserRepository interface {

	/*
		FindByEmail returns the identity with the given normalised email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByID returns the identity with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		Create persists a brand-new identity. Timestamps are filled in when zero.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: [ErrDuplicateEmail] or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		IncrementTokenVersion atomically bumps the token version of id, but only
		while it still equals expected.

		Parameters:
		  - context: context.Context
		  - id: string
		  - expected: int64 (version the caller read)

		Returns:
		  - int64: The new version
		  - error: [ErrVersionConflict], [ErrUserNotFound] or storage failures
	*/
	IncrementTokenVersion(context context.Context, id string, expected int64) (int64, error)

	/*
		Ping checks that the backing store is reachable.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Connectivity failures
	*/
	Ping(context context.Context) error
}
