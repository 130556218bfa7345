// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts common body decoding and header parsing patterns, ensuring consistent
error handling across handlers.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taibuivan/rexauth/internal/platform/apperr"
	"github.com/taibuivan/rexauth/internal/platform/constants"
	"github.com/taibuivan/rexauth/internal/platform/ctxutil"
	"github.com/taibuivan/rexauth/internal/platform/sec"
	"github.com/taibuivan/rexauth/internal/platform/validate"
)

// maxBodyBytes bounds request bodies; credentials and profile fields are small.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (needed to enforce the body limit)
  - request: *http.Request
  - target: interface{} (Pointer to the destination value)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
BearerToken extracts the token from an "Authorization: Bearer <token>" header.

Returns an empty string when the header is absent or uses another scheme.
*/
func BearerToken(request *http.Request) string {
	parts := strings.Fields(request.Header.Get(constants.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], constants.BearerScheme) {
		return ""
	}
	return parts[1]
}

/*
Cookie returns the value of the named cookie, or an empty string.
*/
func Cookie(request *http.Request, name string) string {
	cookie, err := request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AccessClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AccessClaims, error) {

	// Get user claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("No token")
	}

	return claims, nil
}
