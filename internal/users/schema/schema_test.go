// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rexauth/internal/users/schema"
)

func intPtr(v int) *int { return &v }

func profileSchema() schema.Schema {
	return schema.Base().Merge(schema.Schema{
		"name":   {Kind: schema.KindString, Required: true, MinLength: intPtr(2), MaxLength: intPtr(5)},
		"age":    {Kind: schema.KindNumber},
		"admin":  {Kind: schema.KindBoolean, Required: true, Default: false},
		"tags":   {Kind: schema.KindArray, MaxLength: intPtr(2), Items: &schema.Field{Kind: schema.KindString}},
		"street": {Kind: schema.KindObject, Fields: schema.Schema{"zip": {Kind: schema.KindString, Required: true}}},
	})
}

/*
TestValidate covers each rule and its fail-fast ordering.
*/
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		input  map[string]any
		reason schema.Reason
		field  string
	}{
		{"valid", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai"}, "", ""},
		{"extra_field", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "role": "admin"}, schema.ReasonExtraField, "role"},
		{"extra_wins_over_missing", map[string]any{"nickname": "x"}, schema.ReasonExtraField, "nickname"},
		{"missing_required", map[string]any{"email": "a@b.com", "password": "hash"}, schema.ReasonMissingField, "name"},
		{"null_counts_as_missing", map[string]any{"email": nil, "password": "hash", "name": "tai"}, schema.ReasonMissingField, "email"},
		{"default_satisfies_required", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai"}, "", ""},
		{"wrong_type_string", map[string]any{"email": 42.0, "password": "hash", "name": "tai"}, schema.ReasonWrongType, "email"},
		{"wrong_type_number", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "age": "ten"}, schema.ReasonWrongType, "age"},
		{"wrong_type_boolean", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "admin": "yes"}, schema.ReasonWrongType, "admin"},
		{"too_short", map[string]any{"email": "a@b.com", "password": "hash", "name": "t"}, schema.ReasonLength, "name"},
		{"too_long", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai-bui"}, schema.ReasonLength, "name"},
		{"rune_length", map[string]any{"email": "a@b.com", "password": "hash", "name": "日本語"}, "", ""},
		{"array_length", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "tags": []any{"a", "b", "c"}}, schema.ReasonLength, "tags"},
		{"array_item_type", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "tags": []any{"a", 1.0}}, schema.ReasonWrongType, "tags[1]"},
		{"nested_missing", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "street": map[string]any{}}, schema.ReasonMissingField, "street.zip"},
		{"nested_extra", map[string]any{"email": "a@b.com", "password": "hash", "name": "tai", "street": map[string]any{"zip": "1", "city": "x"}}, schema.ReasonExtraField, "street.city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violation := schema.Validate(profileSchema(), tt.input)

			if tt.reason == "" {
				assert.Nil(t, violation)
				return
			}

			require.NotNil(t, violation)
			assert.Equal(t, tt.reason, violation.Reason)
			assert.Equal(t, tt.field, violation.Field)
			assert.NotEmpty(t, violation.Error())
		})
	}
}

/*
TestValidate_Messages pins the client-facing wording of length violations.
*/
func TestValidate_Messages(t *testing.T) {
	s := profileSchema()

	short := schema.Validate(s, map[string]any{"email": "a@b.com", "password": "h", "name": "t"})
	require.NotNil(t, short)
	assert.Equal(t, "name must be at least 2 characters long", short.Message)

	long := schema.Validate(s, map[string]any{"email": "a@b.com", "password": "h", "name": "abcdef"})
	require.NotNil(t, long)
	assert.Equal(t, "name must be under 6 characters long", long.Message)
}

/*
TestApplyDefaults fills only absent fields.
*/
func TestApplyDefaults(t *testing.T) {
	input := map[string]any{"email": "a@b.com"}
	record := schema.ApplyDefaults(profileSchema(), input)

	assert.Equal(t, false, record["admin"])
	assert.Equal(t, "a@b.com", record["email"])
	assert.NotContains(t, input, "admin", "input must not be mutated")

	record = schema.ApplyDefaults(profileSchema(), map[string]any{"admin": true})
	assert.Equal(t, true, record["admin"])
}

/*
TestParse loads a JSON document over the base schema.
*/
func TestParse(t *testing.T) {
	parsed, err := schema.Parse([]byte(`{
		"name": {"type": "string", "required": true, "maxLength": 40},
		"tags": {"type": "array", "items": {"type": "string"}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "name", "password", "tags"}, parsed.Names())
	assert.Equal(t, 40, *parsed["name"].MaxLength)
	assert.True(t, parsed["email"].Unique)
}

/*
TestParse_Rejects invalid documents.
*/
func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not_json", `{`},
		{"unknown_type", `{"name": {"type": "date"}}`},
		{"bad_bounds", `{"name": {"type": "string", "minLength": 5, "maxLength": 2}}`},
		{"bad_default", `{"age": {"type": "number", "default": "ten"}}`},
		{"email_optional", `{"email": {"type": "string"}}`},
		{"nested_unknown", `{"home": {"type": "object", "fields": {"zip": {"type": "zip"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

/*
TestLoadFile reads from disk and defaults to the base schema.
*/
func TestLoadFile(t *testing.T) {
	base, err := schema.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "password"}, base.Names())

	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": {"type": "string"}}`), 0o600))

	loaded, err := schema.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, loaded.Has("name"))

	_, err = schema.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
