// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/rexauth/internal/platform/apperr"
	"github.com/taibuivan/rexauth/internal/platform/constants"
	"github.com/taibuivan/rexauth/internal/platform/ctxutil"
	"github.com/taibuivan/rexauth/internal/platform/sec"
	"github.com/taibuivan/rexauth/internal/platform/validate"
	"github.com/taibuivan/rexauth/internal/users/schema"
	"github.com/taibuivan/rexauth/pkg/email"
	"github.com/taibuivan/rexauth/pkg/uuidv7"
)

// # Contracts & Types

// TokenProcessor issues, verifies and transports access/refresh tokens.
// [sec.TokenProcessor] is the production implementation.
type TokenProcessor interface {
	Now() time.Time
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID string, tokenVersion int64) (string, error)
	VerifyAccessToken(token string) (*sec.AccessClaims, error)
	VerifyRefreshToken(token string) (*sec.RefreshClaims, error)
	SendRefreshToken(writer http.ResponseWriter, token string)
	RefreshCookieName() string
}

// PasswordHasher hashes and checks passwords. [sec.BcryptHasher] is the
// production implementation.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Verify(plainTextPassword, existingHash string) bool
}

// ServiceConfig carries the construction-time settings of a [Service].
type ServiceConfig struct {
	// Schema is the declared identity schema. Nil means [schema.Base].
	Schema schema.Schema
	// PublicFields is the default login/refresh projection. Empty means ["email"].
	PublicFields []string
}

// Service implements the authentication flows.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokens         TokenProcessor
	hasher         PasswordHasher
	identitySchema schema.Schema
	publicFields   []string
}

// NewService constructs a new [Service] and checks the default projection
// against the schema.
func NewService(
	userRepo UserRepository,
	tokens TokenProcessor,
	hasher PasswordHasher,
	cfg ServiceConfig,
) (*Service, error) {
	service := &Service{
		userRepository: userRepo,
		tokens:         tokens,
		hasher:         hasher,
		identitySchema: cfg.Schema,
		publicFields:   cfg.PublicFields,
	}

	if service.identitySchema == nil {
		service.identitySchema = schema.Base()
	}
	if len(service.publicFields) == 0 {
		service.publicFields = []string{schema.FieldEmail}
	}

	if err := service.CheckFields(service.publicFields); err != nil {
		return nil, err
	}

	return service, nil
}

// CheckFields reports whether every name is a projectable schema field.
// The password hash is never projectable.
func (service *Service) CheckFields(fields []string) error {
	for _, name := range fields {
		if name == schema.FieldPassword {
			return fmt.Errorf("auth: field %q cannot be exposed", name)
		}
		if !service.identitySchema.Has(name) {
			return fmt.Errorf("auth: field %q is not declared in the identity schema", name)
		}
	}
	return nil
}

// project applies fields, or the service default when fields is empty.
func (service *Service) project(user *User, fields []string) map[string]any {
	if len(fields) == 0 {
		fields = service.publicFields
	}
	return user.Project(fields)
}

// # Registration Flow

/*
Register validates, hashes, and persists a brand new identity.

Description: The body is the raw JSON object the client sent. Email and password
are checked first, then the record (with the hashed password) must satisfy the
identity schema. No tokens are issued; the caller logs in separately.

Parameters:
  - context: context.Context
  - body: map[string]any

Returns:
  - *User: Created entity
  - error: InsufficientInput, WeakPassword, SchemaViolation, DuplicateEmail or storage errors
*/
func (service *Service) Register(context context.Context, body map[string]any) (*User, error) {
	rawEmail, _ := body[schema.FieldEmail].(string)
	password, _ := body[schema.FieldPassword].(string)

	validator := &validate.Validator{}
	validator.Required(schema.FieldEmail, rawEmail).Required(schema.FieldPassword, password)
	if validator.HasErrors() {
		return nil, apperr.InsufficientInput(MsgInsufficientInput, validator.Details()...)
	}

	validator = &validate.Validator{}
	validator.MinLen(schema.FieldPassword, password, constants.MinPasswordLength)
	if validator.HasErrors() {
		return nil, apperr.WeakPassword(MsgWeakPassword, validator.Details()...)
	}

	hashedPassword, err := service.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// The schema sees the record as stored: normalised email and hashed password
	normalizedEmail := email.Normalize(rawEmail)
	record := make(map[string]any, len(body))
	for key, value := range body {
		record[key] = value
	}
	record[schema.FieldEmail] = normalizedEmail
	record[schema.FieldPassword] = hashedPassword

	if violation := schema.Validate(service.identitySchema, record); violation != nil {
		return nil, apperr.SchemaViolation(violation.Field, violation.Message)
	}

	// Fast path only; the store's unique index is what actually prevents duplicates
	_, err = service.userRepository.FindByEmail(context, normalizedEmail)
	if err == nil {
		return nil, apperr.DuplicateEmail(MsgEmailTaken)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	record = schema.ApplyDefaults(service.identitySchema, record)
	delete(record, schema.FieldEmail)
	delete(record, schema.FieldPassword)

	user := &User{
		ID:           uuidv7.New(),
		Email:        normalizedEmail,
		PasswordHash: hashedPassword,
		TokenVersion: 0,
		Extra:        record,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperr.DuplicateEmail(MsgEmailTaken)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered", slog.String("user_id", user.ID))

	return user, nil
}

// # Authentication Flow

// Session is the token pair minted by a successful login or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

/*
Login checks credentials and mints an access/refresh token pair.

Parameters:
  - context: context.Context
  - rawEmail: string
  - password: string

Returns:
  - *Session: Tokens plus the identity
  - error: InsufficientInput, NotFound, InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, rawEmail, password string) (*Session, error) {
	validator := &validate.Validator{}
	validator.Required(schema.FieldEmail, rawEmail).Required(schema.FieldPassword, password)
	if validator.HasErrors() {
		return nil, apperr.InsufficientInput(MsgInsufficientInput, validator.Details()...)
	}

	user, err := service.userRepository.FindByEmail(context, email.Normalize(rawEmail))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !service.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials(MsgInvalidCredentials)
	}

	return service.mintSession(user)
}

func (service *Service) mintSession(user *User) (*Session, error) {
	refreshToken, err := service.tokens.GenerateRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	return &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

/*
Authorize gates a protected request on its bearer access token.

Description: Beyond signature verification, the expiry is re-checked against the
processor clock and the identity must still exist.

Parameters:
  - context: context.Context
  - accessToken: string (empty when the header was missing)

Returns:
  - *sec.AccessClaims: Verified claims
  - error: Unauthorized or UserGone
*/
func (service *Service) Authorize(context context.Context, accessToken string) (*sec.AccessClaims, error) {
	if accessToken == "" {
		return nil, apperr.Unauthorized(MsgNoToken)
	}

	claims, err := service.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		if sec.IsExpired(err) {
			return nil, apperr.Unauthorized(MsgTokenExpired)
		}
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}

	if claims.UserID == "" {
		return nil, apperr.Unauthorized(MsgMalformedToken)
	}

	if claims.ExpiresAt == nil || !service.tokens.Now().Before(claims.ExpiresAt.Time) {
		return nil, apperr.Unauthorized(MsgTokenExpired)
	}

	if _, err := service.userRepository.FindByID(context, claims.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.UserGone(MsgUserNotFound)
		}
		return nil, fmt.Errorf("auth_service_authorize_lookup_failed: %w", err)
	}

	return claims, nil
}

// # Session Management

/*
Refresh implements refresh token rotation.

Description: The token's version must equal the stored version; the stored version
is then bumped with a compare-and-increment, so a superseded token (or the loser of
two concurrent refreshes with the same token) is rejected.

Parameters:
  - context: context.Context
  - refreshToken: string (empty when the cookie was missing)

Returns:
  - *Session: Rotated tokens
  - error: Unauthorized, UserGone, VersionMismatch or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized(MsgNoCookie)
	}

	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "refresh_token_rejected", slog.Any("error", err))
		return nil, apperr.Unauthorized(err.Error())
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.UserGone(MsgNoUser)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if claims.TokenVersion != user.TokenVersion {
		ctxutil.GetLogger(context).WarnContext(context, "refresh_token_replayed",
			slog.String("user_id", user.ID),
			slog.Int64("token_version", claims.TokenVersion),
		)
		return nil, apperr.VersionMismatch(MsgExpiredVersion)
	}

	version, err := service.userRepository.IncrementTokenVersion(context, user.ID, user.TokenVersion)
	if err != nil {
		switch {
		case errors.Is(err, ErrVersionConflict):
			return nil, apperr.VersionMismatch(MsgExpiredVersion)
		case errors.Is(err, ErrUserNotFound):
			return nil, apperr.UserGone(MsgNoUser)
		}
		return nil, fmt.Errorf("auth_service_refresh_rotate_failed: %w", err)
	}
	user.TokenVersion = version

	return service.mintSession(user)
}

// Profile returns the identity behind an authorized request.
func (service *Service) Profile(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.UserGone(MsgUserNotFound)
		}
		return nil, fmt.Errorf("auth_service_profile_failed: %w", err)
	}
	return user, nil
}
