// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/rexauth/pkg/email"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already_canonical", "tai@example.com", "tai@example.com"},
		{"mixed_case", "Tai@Example.COM", "tai@example.com"},
		{"surrounding_space", "  tai@example.com\t", "tai@example.com"},
		{"decomposed_accent", "rémi@example.com", "rémi@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, email.Normalize(tt.input))
		})
	}
}
