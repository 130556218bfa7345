// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"
)

var _ UserRepository = (*MemoryUserRepository)(nil)

// MemoryUserRepository keeps identities in process memory. It backs the
// "memory" store driver and the service tests.
type MemoryUserRepository struct {
	lock     sync.RWMutex
	users    map[string]*User
	emailIDs map[string]string // email to user id
}

// NewMemoryUserRepository returns an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:    make(map[string]*User),
		emailIDs: make(map[string]string),
	}
}

// FindByEmail returns a copy of the identity stored under email.
func (repository *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repository.lock.RLock()
	defer repository.lock.RUnlock()

	id, ok := repository.emailIDs[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return repository.users[id].clone(), nil
}

// FindByID returns a copy of the identity stored under id.
func (repository *MemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.lock.RLock()
	defer repository.lock.RUnlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.clone(), nil
}

// Create stores a copy of user, rejecting a second record for the same email.
func (repository *MemoryUserRepository) Create(_ context.Context, user *User) error {
	repository.lock.Lock()
	defer repository.lock.Unlock()

	if _, taken := repository.emailIDs[user.Email]; taken {
		return ErrDuplicateEmail
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	repository.users[user.ID] = user.clone()
	repository.emailIDs[user.Email] = user.ID
	return nil
}

// IncrementTokenVersion bumps the version under the write lock.
func (repository *MemoryUserRepository) IncrementTokenVersion(_ context.Context, id string, expected int64) (int64, error) {
	repository.lock.Lock()
	defer repository.lock.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return 0, ErrUserNotFound
	}
	if user.TokenVersion != expected {
		return 0, ErrVersionConflict
	}

	user.TokenVersion++
	user.UpdatedAt = time.Now()
	return user.TokenVersion, nil
}

// Ping always succeeds.
func (repository *MemoryUserRepository) Ping(context.Context) error {
	return nil
}
