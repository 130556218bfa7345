// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/rexauth/internal/platform/constants"
	redisclient "github.com/taibuivan/rexauth/internal/platform/redis"
)

var _ UserRepository = (*RedisUserRepository)(nil)

// Hash fields of an identity stored at rex:user:<id>.
const (
	redisFieldID           = "id"
	redisFieldEmail        = "email"
	redisFieldPassword     = "password"
	redisFieldTokenVersion = "tokenVersion"
	redisFieldExtra        = "extra"
	redisFieldCreatedAt    = "createdAt"
	redisFieldUpdatedAt    = "updatedAt"
)

// incrementVersionScript bumps tokenVersion only while it equals ARGV[1].
// Returns the new version, -1 on mismatch, -2 when the hash is missing.
var incrementVersionScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'tokenVersion')
if not current then
	return -2
end
if tonumber(current) ~= tonumber(ARGV[1]) then
	return -1
end
redis.call('HSET', KEYS[1], 'updatedAt', ARGV[2])
return redis.call('HINCRBY', KEYS[1], 'tokenVersion', 1)
`)

// # User Repository

// RedisUserRepository implements the UserRepository interface on Redis hashes.
//
// Email uniqueness is claimed with SETNX on rex:email:<email> before the identity
// hash is written.
type RedisUserRepository struct {
	client *redis.Client
}

// NewRedisUserRepository creates a new Redis-backed UserRepository.
func NewRedisUserRepository(client *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{client: client}
}

func userKey(id string) string { return constants.RedisPrefixUser + id }
func emailKey(email string) string { return constants.RedisPrefixEmail + email }

/*
Create claims the email index and writes the identity hash.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: ErrDuplicateEmail or connectivity errors
*/
func (repository *RedisUserRepository) Create(context context.Context, user *User) error {

	// Claim the email first; the loser of a race stops here
	claimed, err := repository.client.SetNX(context, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("redis_user_repo_claim_email_failed: %w", err)
	}
	if !claimed {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	extra, err := json.Marshal(user.Extra)
	if err != nil {
		_ = repository.client.Del(context, emailKey(user.Email)).Err()
		return fmt.Errorf("redis_user_repo_encode_extra_failed: %w", err)
	}

	err = repository.client.HSet(context, userKey(user.ID), map[string]any{
		redisFieldID:           user.ID,
		redisFieldEmail:        user.Email,
		redisFieldPassword:     user.PasswordHash,
		redisFieldTokenVersion: user.TokenVersion,
		redisFieldExtra:        string(extra),
		redisFieldCreatedAt:    user.CreatedAt.Format(time.RFC3339Nano),
		redisFieldUpdatedAt:    user.UpdatedAt.Format(time.RFC3339Nano),
	}).Err()

	if err != nil {
		// Release the claim so the email is not locked by a record that was never written
		_ = repository.client.Del(context, emailKey(user.Email)).Err()
		return fmt.Errorf("redis_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail resolves the email index and loads the identity hash.
func (repository *RedisUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	id, err := repository.client.Get(context, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("redis_user_repo_find_by_email_failed: %w", err)
	}
	return repository.FindByID(context, id)
}

// FindByID loads the identity hash stored under id.
func (repository *RedisUserRepository) FindByID(context context.Context, id string) (*User, error) {
	fields, err := repository.client.HGetAll(context, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_user_repo_find_by_id_failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}
	return decodeUserHash(fields)
}

/*
IncrementTokenVersion runs the compare-and-increment script atomically on the server.

Parameters:
  - context: context.Context
  - id: string
  - expected: int64

Returns:
  - int64: New version
  - error: ErrVersionConflict, ErrUserNotFound or connectivity errors
*/
func (repository *RedisUserRepository) IncrementTokenVersion(context context.Context, id string, expected int64) (int64, error) {
	result, err := incrementVersionScript.Run(context, repository.client,
		[]string{userKey(id)},
		expected, time.Now().UTC().Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis_user_repo_increment_version_failed: %w", err)
	}

	switch result {
	case -2:
		return 0, ErrUserNotFound
	case -1:
		return 0, ErrVersionConflict
	default:
		return result, nil
	}
}

// Ping verifies that the Redis client is healthy.
func (repository *RedisUserRepository) Ping(context context.Context) error {
	return redisclient.Ping(context, repository.client)
}

func decodeUserHash(fields map[string]string) (*User, error) {
	version, err := strconv.ParseInt(fields[redisFieldTokenVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis_user_repo_decode_version_failed: %w", err)
	}

	user := &User{
		ID:           fields[redisFieldID],
		Email:        fields[redisFieldEmail],
		PasswordHash: fields[redisFieldPassword],
		TokenVersion: version,
		Extra:        map[string]any{},
	}

	if raw := fields[redisFieldExtra]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &user.Extra); err != nil {
			return nil, fmt.Errorf("redis_user_repo_decode_extra_failed: %w", err)
		}
	}

	// Timestamps are informational; a malformed value is left zero.
	user.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields[redisFieldCreatedAt])
	user.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields[redisFieldUpdatedAt])

	return user, nil
}
