// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/rexauth/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/rexauth/internal/platform/request"
	"github.com/taibuivan/rexauth/internal/platform/respond"
	"github.com/taibuivan/rexauth/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Every endpoint is an error boundary: failures are rendered as a JSON payload
// here and never reach a generic handler.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new identity.
//   - POST /login    : Verifies credentials, sets the refresh cookie, returns an access token.
//   - POST /refresh  : Rotates the refresh cookie and returns a new access token.
//   - POST /logout   : Clears the refresh cookie.
//   - GET  /me       : Returns the caller's public fields (protected).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.Protect)
		r.Get("/me", handler.me)
	})

	return router
}

// # Middleware

// Protect rejects requests without a valid bearer access token for an existing
// identity. On success the verified claims are attached to the request context
// and next is invoked; on failure next is never invoked.
func (handler *Handler) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims, err := handler.authService.Authorize(request.Context(), requestutil.BearerToken(request))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
	})
}

// PublicFields returns a middleware that sets the login/refresh/me projection
// for the routes it wraps. Every field must be declared in the identity schema;
// an unknown field is a configuration error reported at setup, not per request.
func (handler *Handler) PublicFields(fields ...string) (func(http.Handler) http.Handler, error) {
	if err := handler.authService.CheckFields(fields); err != nil {
		return nil, err
	}

	whitelist := append([]string(nil), fields...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPublicFields(request.Context(), whitelist)))
		})
	}, nil
}

// # Response Payloads

type loginResponse struct {
	AccessToken string         `json:"accessToken"`
	UserInfo    map[string]any `json:"userInfo"`
}

type registerResponse struct {
	Message string `json:"msg"`
}

type refreshResponse struct {
	OK          bool           `json:"ok"`
	AccessToken string         `json:"accessToken"`
	UserInfo    map[string]any `json:"userInfo,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type logoutResponse struct {
	OK bool `json:"ok"`
}

type profileResponse struct {
	UserInfo map[string]any `json:"userInfo"`
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new identity.

POST /api/v1/auth/register

Request:
  - Body: {email, password, ...schema fields}

Response:
  - 201: {msg: "User created successfully"}
  - 400: Missing credentials, weak password, schema violation or duplicate email
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var body map[string]any
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil || body == nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if _, err := handler.authService.Register(request.Context(), body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{Message: MsgUserCreated})
}

/*
Login authenticates an identity and establishes a session.

POST /api/v1/auth/login

Request:
  - Body: {email, password}

Response:
  - 200: {accessToken, userInfo} plus the refresh cookie
  - 400: Missing credentials
  - 401: Invalid credentials
  - 404: Unknown email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.authService.tokens.SendRefreshToken(writer, session.RefreshToken)

	respond.OK(writer, loginResponse{
		AccessToken: session.AccessToken,
		UserInfo:    handler.authService.project(session.User, ctxutil.GetPublicFields(request.Context())),
	})
}

/*
Refresh rotates the refresh cookie and issues a new access token.

POST /api/v1/auth/refresh

Response:
  - 200: {ok: true, accessToken, userInfo} plus a new refresh cookie
  - 4xx: {ok: false, accessToken: "", error}
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	tokens := handler.authService.tokens
	refreshToken := requestutil.Cookie(request, tokens.RefreshCookieName())

	session, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		appError := respond.Classify(request, err)
		respond.JSON(writer, appError.HTTPStatus, refreshResponse{
			OK:          false,
			AccessToken: "",
			Error:       appError.Message,
		})
		return
	}

	tokens.SendRefreshToken(writer, session.RefreshToken)

	respond.OK(writer, refreshResponse{
		OK:          true,
		AccessToken: session.AccessToken,
		UserInfo:    handler.authService.project(session.User, ctxutil.GetPublicFields(request.Context())),
	})
}

/*
Logout clears the refresh cookie. It never fails and does not touch the store.

POST /api/v1/auth/logout

Response:
  - 200: {ok: true}
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.authService.tokens.SendRefreshToken(writer, "")
	respond.OK(writer, logoutResponse{OK: true})
}

/*
Me returns the public fields of the authenticated identity.

GET /api/v1/auth/me

Response:
  - 200: {userInfo}
  - 400/401: Rejected by [Handler.Protect]
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Profile(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profileResponse{
		UserInfo: handler.authService.project(user, ctxutil.GetPublicFields(request.Context())),
	})
}
