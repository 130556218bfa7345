// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requestutil "github.com/taibuivan/rexauth/internal/platform/request"
	"github.com/taibuivan/rexauth/internal/platform/validate"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc.def", "abc.def"},
		{"lowercase_scheme", "bearer abc.def", "abc.def"},
		{"missing", "", ""},
		{"scheme_only", "Bearer", ""},
		{"other_scheme", "Basic dXNlcg==", ""},
		{"extra_parts", "Bearer a b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, requestutil.BearerToken(request))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var target map[string]any

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}`))
	require.NoError(t, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target))
	assert.Equal(t, "a@b.com", target["email"])

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorIs(t, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target), validate.ErrInvalidJSON)
}

func TestCookie(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Empty(t, requestutil.Cookie(request, "rex"))

	request.AddCookie(&http.Cookie{Name: "rex", Value: "token"})
	assert.Equal(t, "token", requestutil.Cookie(request, "rex"))
}
