// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/rex", "pgx5://u:p@localhost:5432/rex"},
		{"postgresql://u@db/rex?sslmode=disable", "pgx5://u@db/rex?sslmode=disable"},
		{"pgx5://u@db/rex", "pgx5://u@db/rex"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertToPgx5DSN(tt.in), tt.in)
	}
}
